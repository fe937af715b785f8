//go:build !headless

package render

// drawShaderSrc is the Kage shader sampling a single image and applying
// the per-draw objAlpha/objBlend/objPos/objWH uniforms, plus the
// rotation-matrix fix spec.md §9 calls for (the source's vertex shader
// never applies rot - this one multiplies the local offset by a
// rotation matrix before the position translate, i.e. before the
// perspective-divide-equivalent in Kage's clip-space output).
const drawShaderSrc = `
package main

var ObjAlpha float
var ObjBlend vec3
var ObjPos vec2
var ObjWH vec2
var ObjRotSinCos vec2 // x = sin(rot), y = cos(rot)

func Vertex(position vec4, texCoord vec2, color vec4) vec4 {
	half := ObjWH / 2
	local := position.xy - half
	s := ObjRotSinCos.x
	c := ObjRotSinCos.y
	rotated := vec2(local.x*c-local.y*s, local.x*s+local.y*c)
	world := rotated + half + ObjPos
	return vec4(world, position.z, position.w)
}

func Fragment(position vec4, texCoord vec2, color vec4) vec4 {
	c := imageSrc0UnsafeAt(texCoord)
	c.rgb *= ObjBlend
	c.a *= ObjAlpha
	return c
}
`
