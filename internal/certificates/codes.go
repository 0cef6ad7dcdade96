package certificates

import (
	"fmt"
	"math/rand"
	"time"
)

// TimestampLayout formats the generation time printed on a certificate.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	codeMin = 100000
	codeMax = 999999
)

// TrackingCode identifies a certificate, e.g. KDO-BMG-482913. Codes are
// random and may collide.
type TrackingCode string

// Tracking is the code and generation time stamped on one certificate.
type Tracking struct {
	Code      TrackingCode
	Timestamp string
	IssuedAt  time.Time
}

// CodeSource hands out tracking data for new certificates.
type CodeSource interface {
	Next() Tracking
}

// CodeGenerator draws six digit codes from a random source.
type CodeGenerator struct {
	prefix string
	intN   func(n int) int
	now    func() time.Time
}

// NewCodeGenerator returns a generator for codes starting with prefix.
// Nil intN or now fall back to math/rand and the wall clock.
func NewCodeGenerator(prefix string, intN func(n int) int, now func() time.Time) *CodeGenerator {
	if intN == nil {
		intN = rand.Intn
	}
	if now == nil {
		now = time.Now
	}
	return &CodeGenerator{prefix: prefix, intN: intN, now: now}
}

func (g *CodeGenerator) Next() Tracking {
	n := codeMin + g.intN(codeMax-codeMin+1)
	at := g.now().Truncate(time.Second)
	return Tracking{
		Code:      TrackingCode(fmt.Sprintf("%s-%06d", g.prefix, n)),
		Timestamp: at.Format(TimestampLayout),
		IssuedAt:  at,
	}
}

// StaticCode always returns the same tracking data.
type StaticCode Tracking

func (s StaticCode) Next() Tracking {
	return Tracking(s)
}
