package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the viewer a render queue is built for. Z-up, yaw/pitch in radians.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	FovY     float32 // radians
	Aspect   float32
	Near     float32
	Far      float32
}

func NewCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 2, 20},
		FovY:     mgl32.DegToRad(60),
		Aspect:   16.0 / 9.0,
		Near:     0.1,
		Far:      1000,
	}
}

func (c *Camera) Forward() mgl32.Vec3 {
	// Z-up: Forward in XY plane, Z for pitch
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Pitch)) * math.Sin(float64(c.Yaw))),
		float32(-math.Cos(float64(c.Pitch)) * math.Cos(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
	}
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	eye := c.Position
	return mgl32.LookAtV(eye, eye.Add(c.Forward()), mgl32.Vec3{0, 0, 1})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// Distance returns the view-space depth of p: larger is farther, negative is
// behind the camera. This is the value the render queue expects from callers.
func (c *Camera) Distance(p mgl32.Vec3) float32 {
	return p.Sub(c.Position).Dot(c.Forward())
}

// Frustum extracts the 6 planes of the view-projection frustum.
// Order: Left, Right, Bottom, Top, Near, Far. Plane is Ax + By + Cz + D = 0,
// normalized so that the signed distance of a point is A*x + B*y + C*z + D.
func (c *Camera) Frustum() [6]mgl32.Vec4 {
	vp := c.ViewProjection()
	var planes [6]mgl32.Vec4
	for i := 0; i < 3; i++ {
		for j, sign := range [2]float32{1, -1} {
			planes[i*2+j] = mgl32.Vec4{
				vp.At(3, 0) + sign*vp.At(i, 0),
				vp.At(3, 1) + sign*vp.At(i, 1),
				vp.At(3, 2) + sign*vp.At(i, 2),
				vp.At(3, 3) + sign*vp.At(i, 3),
			}
		}
	}

	for i := range planes {
		length := planes[i].Vec3().Len()
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}
	return planes
}

// SphereVisible reports whether a sphere intersects the camera frustum.
func (c *Camera) SphereVisible(center mgl32.Vec3, radius float32) bool {
	return SphereInFrustum(c.Frustum(), center, radius)
}

func SphereInFrustum(planes [6]mgl32.Vec4, center mgl32.Vec3, radius float32) bool {
	for _, p := range planes {
		if p.Vec3().Dot(center)+p[3] < -radius {
			return false
		}
	}
	return true
}
