// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader is shared by the phong and basic mesh programs.
//
//go:embed mesh.vert
var MeshVertexShader string

// PhongFragmentShader shades lit, bump-mapped surfaces.
//
//go:embed phong.frag
var PhongFragmentShader string

// BasicFragmentShader shades unlit textured surfaces.
//
//go:embed basic.frag
var BasicFragmentShader string

// FresnelVertexShader computes the per-vertex rim factor.
//
//go:embed fresnel.vert
var FresnelVertexShader string

// FresnelFragmentShader blends facing and rim colours.
//
//go:embed fresnel.frag
var FresnelFragmentShader string

// PointsVertexShader sizes star sprites by distance.
//
//go:embed points.vert
var PointsVertexShader string

// PointsFragmentShader draws sprite-textured, vertex-coloured stars.
//
//go:embed points.frag
var PointsFragmentShader string
