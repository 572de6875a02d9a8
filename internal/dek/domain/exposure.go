// Package domain defines the DEK lifecycle model: the timed exposure slot,
// the fallback policy state machine and the closed error-kind enumeration.
package domain

import (
	"encoding/base64"
	"sync"
	"time"

	cryptoDomain "github.com/l2obin/dekbind/internal/crypto/domain"
)

// DefaultExposureWindow bounds how long plaintext DEK bytes stay in memory.
const DefaultExposureWindow = 30 * time.Second

// Cipher is the in-process AEAD handle imported from the exposed DEK.
type Cipher interface {
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// Exposure describes the plaintext currently held by a slot.
type Exposure struct {
	Generation uint64
	ExpiresAt  time.Time
}

// ExposedDek is the display form of the exposed DEK.
type ExposedDek struct {
	Encoded   string
	ExpiresAt time.Time
}

// ExposureSlot owns the single plaintext DEK of a process.
//
// Every install bumps a generation counter. The zeroization timer captures
// the generation it was armed for and clears only if it still matches, so a
// late timer can never touch bytes installed after it.
type ExposureSlot struct {
	mu        sync.Mutex
	window    time.Duration
	now       func() time.Time
	dek       []byte
	cipher    Cipher
	gen       uint64
	expiresAt time.Time
	timer     *time.Timer
	onClear   func(reason string)
}

// NewExposureSlot creates an empty slot. A non-positive window selects
// DefaultExposureWindow.
func NewExposureSlot(window time.Duration) *ExposureSlot {
	if window <= 0 {
		window = DefaultExposureWindow
	}
	return &ExposureSlot{window: window, now: time.Now}
}

// OnClear registers a callback invoked, outside the lock, each time held
// bytes are zeroed. reason is "expired", "consumed", "superseded" or "closed".
func (s *ExposureSlot) OnClear(fn func(reason string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = fn
}

// Install takes ownership of dek, zeroing whatever the slot held before, and
// arms the zeroization timer.
func (s *ExposureSlot) Install(dek []byte, cipher Cipher) Exposure {
	s.mu.Lock()
	superseded := s.dek != nil
	s.zeroLocked()

	s.gen++
	gen := s.gen
	s.dek = dek
	s.cipher = cipher
	s.expiresAt = s.now().Add(s.window)
	s.timer = time.AfterFunc(s.window, func() {
		s.clearIf(gen, "expired")
	})
	exposure := Exposure{Generation: gen, ExpiresAt: s.expiresAt}
	onClear := s.onClear
	s.mu.Unlock()

	if superseded && onClear != nil {
		onClear("superseded")
	}
	return exposure
}

// Current returns the generation of the held bytes, if any.
func (s *ExposureSlot) Current() (Exposure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dek == nil {
		return Exposure{}, false
	}
	return Exposure{Generation: s.gen, ExpiresAt: s.expiresAt}, true
}

// With runs fn with the plaintext of generation gen while holding the slot
// lock. It returns false without calling fn when that generation is gone.
// fn must not retain dek.
func (s *ExposureSlot) With(gen uint64, fn func(dek []byte)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dek == nil || s.gen != gen {
		return false
	}
	fn(s.dek)
	return true
}

// WithCipher runs fn with the handle of the exposed DEK while holding the
// slot lock. It returns false without calling fn when nothing is exposed.
func (s *ExposureSlot) WithCipher(fn func(c Cipher)) (Exposure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dek == nil || s.cipher == nil {
		return Exposure{}, false
	}
	fn(s.cipher)
	return Exposure{Generation: s.gen, ExpiresAt: s.expiresAt}, true
}

// ClearIf zeroes the slot when it still holds generation gen.
func (s *ExposureSlot) ClearIf(gen uint64) bool {
	return s.clearIf(gen, "consumed")
}

// Exposed returns the base64 display value while the window is open.
func (s *ExposureSlot) Exposed() (*ExposedDek, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dek == nil {
		return nil, false
	}
	return &ExposedDek{
		Encoded:   base64.StdEncoding.EncodeToString(s.dek),
		ExpiresAt: s.expiresAt,
	}, true
}

// Close zeroes the slot and stops the timer. The slot stays usable.
func (s *ExposureSlot) Close() {
	s.mu.Lock()
	held := s.dek != nil
	s.zeroLocked()
	onClear := s.onClear
	s.mu.Unlock()

	if held && onClear != nil {
		onClear("closed")
	}
}

func (s *ExposureSlot) clearIf(gen uint64, reason string) bool {
	s.mu.Lock()
	if s.dek == nil || s.gen != gen {
		s.mu.Unlock()
		return false
	}
	s.zeroLocked()
	onClear := s.onClear
	s.mu.Unlock()

	if onClear != nil {
		onClear(reason)
	}
	return true
}

func (s *ExposureSlot) zeroLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	cryptoDomain.Zero(s.dek)
	s.dek = nil
	s.cipher = nil
	s.expiresAt = time.Time{}
}
