package model

// DatabaseConnection is a stored credential record for an external system.
type DatabaseConnection struct {
	ID          int64  `json:"id"`
	SystemID    string `json:"system_id"`
	Username    string `json:"username"`
	Password    string `json:"-"`
	IPAddress   string `json:"ip_address"`
	Port        int    `json:"port"`
	ServiceName string `json:"service_name"`
}
