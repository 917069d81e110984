package control

import (
	"errors"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

func TestPerturber_FirstCallOnly(t *testing.T) {
	bodies := []*testBody{
		newTestBody(mgl64.QuatIdent(), mgl64.Ident3()),
		newTestBody(mgl64.QuatIdent(), diag(1, 0.5, 0.25)),
	}
	tracked := []Body{bodies[0], bodies[1]}
	p := NewPerturber(DefaultPerturbation, zerolog.Nop())

	if p.Triggered() {
		t.Fatal("new Perturber should not be triggered")
	}

	if err := p.Apply(tracked); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range bodies {
		b.step(0.01)
	}

	first := make([]mgl64.Vec3, len(bodies))
	for i, b := range bodies {
		// The impulse is I*a, so the velocity change is a regardless of inertia.
		if !vec3AlmostEqual(b.AngularVelocity(), DefaultPerturbation, 1e-9) {
			t.Errorf("body %d: angular velocity = %v, want %v", i, b.AngularVelocity(), DefaultPerturbation)
		}
		first[i] = b.AngularVelocity()
	}

	for call := 0; call < 3; call++ {
		if err := p.Apply(tracked); err != nil {
			t.Fatalf("call %d: unexpected error: %v", call+2, err)
		}
		for _, b := range bodies {
			b.step(0.01)
		}
	}

	for i, b := range bodies {
		if b.AngularVelocity() != first[i] {
			t.Errorf("body %d: angular velocity changed to %v after repeated calls, want %v", i, b.AngularVelocity(), first[i])
		}
		if b.impulses != 1 {
			t.Errorf("body %d: impulses = %d, want 1", i, b.impulses)
		}
	}
	if p.State() != Triggered {
		t.Errorf("State() = %v, want %v", p.State(), Triggered)
	}
}

func TestPerturber_ImpulseUsesInertia(t *testing.T) {
	// Inverse inertia sqrt diag(1/2, 1, 1) -> inertia diag(4, 1, 1).
	body := newTestBody(mgl64.QuatIdent(), diag(0.5, 1, 1))
	p := NewPerturber(mgl64.Vec3{10, 0, 0}, zerolog.Nop())

	if err := p.Apply([]Body{body}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := (mgl64.Vec3{40, 0, 0}); !vec3AlmostEqual(body.impulse, want, 1e-12) {
		t.Errorf("impulse = %v, want %v", body.impulse, want)
	}
	if body.torque != (mgl64.Vec3{}) {
		t.Errorf("continuous torque = %v, want zero", body.torque)
	}
}

func TestPerturber_ConcurrentCallsApplyOnce(t *testing.T) {
	body := newTestBody(mgl64.QuatIdent(), mgl64.Ident3())
	p := NewPerturber(DefaultPerturbation, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Apply([]Body{body})
		}()
	}
	wg.Wait()

	if body.impulses != 1 {
		t.Errorf("impulses = %d, want 1", body.impulses)
	}
}

func TestPerturber_SingularInertia(t *testing.T) {
	good := newTestBody(mgl64.QuatIdent(), mgl64.Ident3())
	singular := newTestBody(mgl64.QuatIdent(), mgl64.Mat3{})
	p := NewPerturber(DefaultPerturbation, zerolog.Nop())

	err := p.Apply([]Body{singular, good, nil})
	if !errors.Is(err, ErrSingularInertia) {
		t.Fatalf("error = %v, want ErrSingularInertia", err)
	}
	if !errors.Is(err, ErrNilBody) {
		t.Errorf("error = %v, want ErrNilBody", err)
	}

	var bodyErr *BodyError
	if !errors.As(err, &bodyErr) || bodyErr.Index != 0 {
		t.Errorf("BodyError = %v, want index 0", bodyErr)
	}
	if singular.impulses != 0 {
		t.Errorf("singular body received %d impulses, want 0", singular.impulses)
	}
	if good.impulses != 1 {
		t.Errorf("good body received %d impulses, want 1", good.impulses)
	}
	if !p.Triggered() {
		t.Error("Perturber should be triggered after a partial failure")
	}

	if err := p.Apply([]Body{singular}); err != nil {
		t.Errorf("second call error = %v, want nil", err)
	}
}

func TestPerturber_IndependentInstances(t *testing.T) {
	body := newTestBody(mgl64.QuatIdent(), mgl64.Ident3())

	a := NewPerturber(DefaultPerturbation, zerolog.Nop())
	b := NewPerturber(DefaultPerturbation, zerolog.Nop())

	_ = a.Apply([]Body{body})
	if b.Triggered() {
		t.Error("triggering one Perturber must not trigger another")
	}
	_ = b.Apply([]Body{body})

	if body.impulses != 2 {
		t.Errorf("impulses = %d, want 2", body.impulses)
	}
}
