package main

import (
	"fmt"

	"github.com/akmonengine/poise"
	"github.com/akmonengine/poise/actor"
	"github.com/akmonengine/poise/control"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// SetupScene creates a single unit cube floating in zero gravity.
func SetupScene() (*poise.World, *actor.RigidBody) {
	world := &poise.World{
		Gravity:  mgl64.Vec3{0, 0, 0},
		Substeps: 1,
	}

	boxShape := &actor.Box{
		HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5},
	}
	cubeTransform := actor.Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}

	cubeBody := actor.NewRigidBody(cubeTransform, boxShape, actor.BodyTypeDynamic, 1.0)
	world.AddBody(cubeBody)

	return world, cubeBody
}

// StabilizeCube drives the cube to a fixed orientation, kicks it once and lets it recover.
func StabilizeCube() error {
	fmt.Println("Stabilization of a cube")
	fmt.Println("=======================")

	world, cubeBody := SetupScene()

	target := mgl64.Quat{W: 4, V: mgl64.Vec3{1, 2, 3}}.Normalize()
	stabilizer, err := control.NewStabilizer(control.Config{
		Target:    target,
		Stiffness: control.DefaultStiffness,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		return err
	}
	perturber := control.NewPerturber(control.DefaultPerturbation, zerolog.Nop())

	schedule := poise.NewSchedule(world, zerolog.Nop(), nil)
	if err := schedule.AddFixedSystem("perturb", 3.0, poise.PerturbSystem(perturber, nil)); err != nil {
		return err
	}
	schedule.AddSystem("stabilize", poise.StabilizeSystem(stabilizer, nil))

	fmt.Printf("Target: %v\n", target)
	fmt.Printf("Stiffness %.1f, damping %.3f\n\n", stabilizer.Stiffness(), stabilizer.Damping())

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 600

	for step := 0; step < maxSteps; step++ {
		triggered := perturber.Triggered()
		if err := schedule.Tick(dt); err != nil {
			return err
		}
		if !triggered && perturber.Triggered() {
			fmt.Printf("--- perturbation at t=%.2fs ---\n", schedule.Elapsed())
		}

		if step%30 == 0 {
			angle := control.RotationError(target, cubeBody.Orientation()).Len()
			fmt.Printf("t=%5.2fs  error=%.6f rad  |omega|=%.6f rad/s\n",
				schedule.Elapsed(), angle, cubeBody.Omega.Len())
		}
	}

	fmt.Printf("\nFinal rotation: %v\n", cubeBody.Transform.Rotation)
	return nil
}

func main() {
	if err := StabilizeCube(); err != nil {
		fmt.Println("error:", err)
	}
}
