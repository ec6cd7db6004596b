package service

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"podapi/internal/model"
)

// Recognizer fills the recognition fields of a file. The current
// implementation produces placeholder values; there is no OCR behind it.
type Recognizer interface {
	Recognize(f *model.File)
}

// RandomRecognizer writes random placeholder values. Safe for concurrent use.
type RandomRecognizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewRandomRecognizer uses src when non-nil, a time-seeded PCG otherwise.
func NewRandomRecognizer(src rand.Source) *RandomRecognizer {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1|1)
	}
	return &RandomRecognizer{rnd: rand.New(src), now: time.Now}
}

// between returns an int in [lo, hi].
func (r *RandomRecognizer) between(lo, hi int) int {
	return lo + r.rnd.IntN(hi-lo+1)
}

func (r *RandomRecognizer) pick(options ...string) string {
	return options[r.rnd.IntN(len(options))]
}

func intPtr(v int) *int { return &v }

// Recognize overwrites every recognition field of f, whatever its review state.
func (r *RandomRecognizer) Recognize(f *model.File) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	f.BLNumber = fmt.Sprintf("BL%d", r.between(1000, 9999))
	f.ShipTo = strPtr(fmt.Sprintf("Location %d", r.between(1, 50)))
	f.Carrier = strPtr("Carrier " + r.pick("A", "B", "C"))
	f.StampType = strPtr(r.pick("Type1", "Type2", "Type3"))
	f.PODDate = &now
	f.Signature = strPtr("Sig " + r.pick("X", "Y", "Z"))
	f.IssuedQty = intPtr(r.between(1, 1000))
	f.ReceivedQty = intPtr(r.between(1, 1000))
	f.NoneQty = intPtr(r.between(0, 10))
	f.DamaQty = intPtr(r.between(0, 10))
	f.ShortQty = intPtr(r.between(0, 10))
	f.OveraQty = intPtr(r.between(0, 10))
	f.RefusQty = intPtr(r.between(0, 10))
	f.SealI = strPtr(fmt.Sprintf("Seal%d", r.between(1, 5)))
	f.RecognitionStatus = model.RecognitionProcessed
	f.ReviewStatus = model.ReviewPending
	f.ReviewedBy = strPtr(model.ReviewerOCRSystem)
	changed := now
	f.ChangedOn = &changed
}
