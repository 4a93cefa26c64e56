package raster

import (
	"math"

	"fbx-pbr-viewer/internal/mathutil"
)

// PointLight is one of the shader's inverse-square point lights.
type PointLight struct {
	Position mathutil.Vec3
	Color    mathutil.Vec3
}

// Lighting mirrors the uniforms of the GLSL PBR shader.
type Lighting struct {
	Lights   []PointLight
	SunDir   mathutil.Vec3 // towards the distant key light (lightPos)
	SunColor mathutil.Vec3
	CamPos   mathutil.Vec3
	Ambient  float64
	Exposure float64
	InvGamma float64
}

// NewLighting returns the shader's lighting for the given lights, key light
// position and camera.
func NewLighting(lights []PointLight, lightPos, camPos mathutil.Vec3) Lighting {
	return Lighting{
		Lights:   lights,
		SunDir:   lightPos.Normalize(),
		SunColor: mathutil.Vec3{2, 2, 2},
		CamPos:   camPos,
		Ambient:  0.03,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// Surface is the shading input at one pixel. Colors are linear.
type Surface struct {
	Position  mathutil.Vec3
	Normal    mathutil.Vec3 // unit length
	Albedo    mathutil.Vec3
	Emissive  mathutil.Vec3
	Metallic  float64
	Roughness float64
	AO        float64
}

// Shade evaluates the Cook-Torrance BRDF for every light and returns linear
// HDR radiance.
func (lt *Lighting) Shade(s *Surface) mathutil.Vec3 {
	n := s.Normal
	v := lt.CamPos.Sub(s.Position).Normalize()
	f0 := mathutil.Vec3{0.04, 0.04, 0.04}.Lerp(s.Albedo, s.Metallic)

	var lo mathutil.Vec3
	for _, l := range lt.Lights {
		d := l.Position.Sub(s.Position)
		dist2 := d.Dot(d)
		if dist2 < 1e-12 {
			continue
		}
		radiance := l.Color.Scale(1 / dist2)
		lo = lo.Add(lt.brdf(s, n, v, d.Normalize(), f0).Mul(radiance))
	}
	if lt.SunDir != (mathutil.Vec3{}) {
		lo = lo.Add(lt.brdf(s, n, v, lt.SunDir, f0).Mul(lt.SunColor))
	}

	ambient := s.Albedo.Scale(lt.Ambient * s.AO)
	return ambient.Add(lo).Add(s.Emissive)
}

// brdf returns (kD·albedo/π + specular)·N·L for light direction l.
func (lt *Lighting) brdf(s *Surface, n, v, l, f0 mathutil.Vec3) mathutil.Vec3 {
	ndl := n.Dot(l)
	if ndl <= 0 {
		return mathutil.Vec3{}
	}
	ndv := math.Max(n.Dot(v), 0)
	h := v.Add(l).Normalize()

	ndf := distributionGGX(n.Dot(h), s.Roughness)
	g := geometrySmith(ndv, ndl, s.Roughness)
	f := fresnelSchlick(math.Max(h.Dot(v), 0), f0)

	spec := f.Scale(ndf * g / (4*ndv*ndl + 0.0001))
	kd := mathutil.Vec3{1, 1, 1}.Sub(f).Scale(1 - s.Metallic)
	diffuse := kd.Mul(s.Albedo).Scale(1 / math.Pi)
	return diffuse.Add(spec).Scale(ndl)
}

func distributionGGX(ndh, roughness float64) float64 {
	a := roughness * roughness
	a2 := a * a
	ndh = math.Max(ndh, 0)
	denom := ndh*ndh*(a2-1) + 1
	return a2 / (math.Pi * denom * denom)
}

func geometrySchlickGGX(ndv, roughness float64) float64 {
	r := roughness + 1
	k := r * r / 8
	return ndv / (ndv*(1-k) + k)
}

func geometrySmith(ndv, ndl, roughness float64) float64 {
	return geometrySchlickGGX(ndv, roughness) * geometrySchlickGGX(ndl, roughness)
}

func fresnelSchlick(cosTheta float64, f0 mathutil.Vec3) mathutil.Vec3 {
	k := math.Pow(math.Max(1-cosTheta, 0), 5)
	return f0.Add(mathutil.Vec3{1, 1, 1}.Sub(f0).Scale(k))
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// Encode tone maps linear radiance and returns 8-bit sRGB.
func (lt *Lighting) Encode(c mathutil.Vec3) (r, g, b uint8) {
	var out [3]uint8
	for k := 0; k < 3; k++ {
		t := ACESTonemap(math.Max(c[k]*lt.Exposure, 0))
		out[k] = clamp255(math.Pow(t, lt.InvGamma) * 255)
	}
	return out[0], out[1], out[2]
}
