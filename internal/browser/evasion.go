package browser

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"sjsage522/vesselschedule/helpers"
)

// Point is a viewport coordinate.
type Point struct {
	X, Y float64
}

// Pointer moves the synthetic mouse.
type Pointer interface {
	MoveLinear(to Point, steps int) error
}

// EvasionPolicy bundles the anti-automation measures applied to a session. It is
// swappable so terminals that do not need it run at full speed.
type EvasionPolicy interface {
	Name() string
	// LaunchFlags are extra Chromium switches.
	LaunchFlags() []string
	// Scripts run in every new document before the page's own scripts.
	Scripts() []string
	// BeforeInteract runs before each click, selection or keystroke. target may be
	// nil when the element has no box.
	BeforeInteract(ctx context.Context, target *Point, ptr Pointer) error
}

// NoEvasion applies nothing.
type NoEvasion struct{}

func (NoEvasion) Name() string          { return "none" }
func (NoEvasion) LaunchFlags() []string { return nil }
func (NoEvasion) Scripts() []string     { return nil }
func (NoEvasion) BeforeInteract(context.Context, *Point, Pointer) error {
	return nil
}

const (
	webdriverScript = `Object.defineProperty(Navigator.prototype, 'webdriver', { get: () => undefined, configurable: true });
try { delete Navigator.prototype.webdriver; } catch (e) {}`
	languagesScript = `Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en', 'th'] });`
	pluginsScript   = `Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5].map(i => ({ name: 'Plugin ' + i })) });`
	chromeScript    = `window.chrome = window.chrome || { runtime: {} };`
)

// StealthPolicy hides navigator.webdriver, fakes plugins and languages, and paces
// interactions with a random delay and a wandering mouse path.
type StealthPolicy struct {
	JitterMin time.Duration
	JitterMax time.Duration

	mu    sync.Mutex
	rnd   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewStealthPolicy returns a policy with jitter drawn from [lo, hi].
func NewStealthPolicy(lo, hi time.Duration) *StealthPolicy {
	if hi < lo {
		hi = lo
	}
	return &StealthPolicy{
		JitterMin: lo,
		JitterMax: hi,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:     helpers.Sleep,
	}
}

func (s *StealthPolicy) Name() string { return "stealth" }

func (s *StealthPolicy) LaunchFlags() []string {
	return []string{"disable-blink-features=AutomationControlled"}
}

func (s *StealthPolicy) Scripts() []string {
	return []string{webdriverScript, languagesScript, pluginsScript, chromeScript}
}

func (s *StealthPolicy) BeforeInteract(ctx context.Context, target *Point, ptr Pointer) error {
	if ptr != nil && target != nil {
		for _, p := range s.path(*target) {
			// a failed move only weakens the disguise
			_ = ptr.MoveLinear(p, s.intn(8)+4)
		}
	}
	return s.sleep(ctx, s.Jitter())
}

// Jitter draws one delay from the configured range.
func (s *StealthPolicy) Jitter() time.Duration {
	span := int64(s.JitterMax - s.JitterMin)
	if span <= 0 {
		return s.JitterMin
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.JitterMin + time.Duration(s.rnd.Int63n(span+1))
}

// path returns one or two random waypoints and then the target nudged by a few pixels.
func (s *StealthPolicy) path(target Point) []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.rnd.Intn(2) + 1
	pts := make([]Point, 0, n+1)
	for range n {
		pts = append(pts, Point{
			X: target.X + (s.rnd.Float64()-0.5)*300,
			Y: target.Y + (s.rnd.Float64()-0.5)*200,
		})
	}
	pts = append(pts, Point{X: target.X + (s.rnd.Float64()-0.5)*4, Y: target.Y + (s.rnd.Float64()-0.5)*4})
	return pts
}

func (s *StealthPolicy) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// PolicyFor picks the evasion policy from configuration.
func PolicyFor(enabled bool, lo, hi time.Duration) EvasionPolicy {
	if !enabled {
		return NoEvasion{}
	}
	return NewStealthPolicy(lo, hi)
}
