package raster

import (
	"image"
	"math"

	"fbx-pbr-viewer/internal/mathutil"
)

// Corner is one projected triangle corner with its shading attributes.
type Corner struct {
	X, Y, Z float64 // pixel coordinates and NDC depth
	InvW    float64 // 1/w, zero when behind the eye
	World   mathutil.Vec3
	Normal  mathutil.Vec3
	U, V    float64 // V as stored in the mesh (negated)
}

// Material holds the texture maps sampled by the PBR shader. Nil maps fall
// back to the constant values.
type Material struct {
	Albedo   *image.NRGBA // sRGB
	Emissive *image.NRGBA // sRGB
	Normal   *image.NRGBA // tangent space, OpenGL convention
	PBR      *image.NRGBA // R = metallic, G = roughness, B = ambient occlusion

	BaseColor mathutil.Vec3 // linear
	Metallic  float64
	Roughness float64
}

// DefaultMaterial returns an untextured light grey dielectric.
func DefaultMaterial() Material {
	return Material{
		BaseColor: mathutil.Vec3{0.5, 0.5, 0.5},
		Metallic:  0,
		Roughness: 0.5,
	}
}

// RasterizeTriangle rasterizes one triangle with perspective-correct
// attributes, a z-buffer and per-pixel PBR shading.
//
// This is the HOT PATH. Per-triangle setup happens once; the pixel loop does
// not allocate.
func RasterizeTriangle(fb *FrameBuffer, c [3]Corner, mat *Material, lt *Lighting) {
	for _, v := range c {
		if v.InvW <= 0 {
			return
		}
	}
	x0, y0 := c[0].X, c[0].Y
	x1, y1 := c[1].X, c[1].Y
	x2, y2 := c[2].X, c[2].Y

	// Tangent frame from UV deltas, using the unflipped V so normal maps keep
	// their +Y-up convention.
	var tangent, bitangent mathutil.Vec3
	hasTBN := false
	if mat.Normal != nil {
		e1 := c[1].World.Sub(c[0].World)
		e2 := c[2].World.Sub(c[0].World)
		du1, dv1 := c[1].U-c[0].U, -(c[1].V - c[0].V)
		du2, dv2 := c[2].U-c[0].U, -(c[2].V - c[0].V)
		det := du1*dv2 - du2*dv1
		if math.Abs(det) > 1e-12 {
			f := 1 / det
			tangent = e1.Scale(dv2 * f).Sub(e2.Scale(dv1 * f))
			bitangent = e2.Scale(du1 * f).Sub(e1.Scale(du2 * f))
			hasTBN = true
		}
	}

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	var s Surface
	for sy := minY; sy <= maxY; sy++ {
		py := float64(sy) + 0.5
		dsy := py - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			iw := w0*c[0].InvW + w1*c[1].InvW + w2*c[2].InvW
			zIdx := rowOff + sx
			if iw <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = iw

			// Perspective-correct weights
			b0 := w0 * c[0].InvW / iw
			b1 := w1 * c[1].InvW / iw
			b2 := 1 - b0 - b1

			u := b0*c[0].U + b1*c[1].U + b2*c[2].U
			v := b0*c[0].V + b1*c[1].V + b2*c[2].V
			s.Position = lerp3(c[0].World, c[1].World, c[2].World, b0, b1, b2)
			n := lerp3(c[0].Normal, c[1].Normal, c[2].Normal, b0, b1, b2).Normalize()

			if hasTBN {
				// Gram-Schmidt against the interpolated normal
				t := tangent.Sub(n.Scale(n.Dot(tangent))).Normalize()
				b := bitangent.Sub(n.Scale(n.Dot(bitangent))).Sub(t.Scale(t.Dot(bitangent))).Normalize()
				r, g, bl, _ := SampleTexture(mat.Normal, u, v)
				tn := mathutil.Vec3{float64(r)/127.5 - 1, float64(g)/127.5 - 1, float64(bl)/127.5 - 1}
				n = t.Scale(tn[0]).Add(b.Scale(tn[1])).Add(n.Scale(tn[2])).Normalize()
			}
			s.Normal = n

			if mat.Albedo != nil {
				r, g, b, _ := SampleTexture(mat.Albedo, u, v)
				s.Albedo = mathutil.Vec3{srgbToLinear[r], srgbToLinear[g], srgbToLinear[b]}
			} else {
				s.Albedo = mat.BaseColor
			}

			if mat.PBR != nil {
				r, g, b, _ := SampleTexture(mat.PBR, u, v)
				s.Metallic = float64(r) / 255
				s.Roughness = float64(g) / 255
				s.AO = float64(b) / 255
			} else {
				s.Metallic, s.Roughness, s.AO = mat.Metallic, mat.Roughness, 1
			}

			s.Emissive = mathutil.Vec3{}
			if mat.Emissive != nil {
				r, g, b, _ := SampleTexture(mat.Emissive, u, v)
				s.Emissive = mathutil.Vec3{srgbToLinear[r], srgbToLinear[g], srgbToLinear[b]}
			}

			cr, cg, cb := lt.Encode(lt.Shade(&s))
			pxIdx := zIdx * 4
			fb.Color[pxIdx] = cr
			fb.Color[pxIdx+1] = cg
			fb.Color[pxIdx+2] = cb
			fb.Color[pxIdx+3] = 255
		}
	}
}

func lerp3(a, b, c mathutil.Vec3, wa, wb, wc float64) mathutil.Vec3 {
	return mathutil.Vec3{
		a[0]*wa + b[0]*wb + c[0]*wc,
		a[1]*wa + b[1]*wb + c[1]*wc,
		a[2]*wa + b[2]*wb + c[2]*wc,
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
