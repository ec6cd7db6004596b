// Package repository contains data access abstractions for the POD schema.
// Implementations live in subpackages (postgres). Missing rows surface as
// sql.ErrNoRows, unique violations as ErrConflict.
package repository

import "errors"

// ErrConflict reports a unique constraint violation.
var ErrConflict = errors.New("unique constraint violation")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is one page of T plus the unpaged total.
type PageResult[T any] struct {
	Items []T
	Total int
}
