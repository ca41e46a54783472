// Package renderer draws the scene graph with OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/earthglow/internal/engine/camera"
	"github.com/Faultbox/earthglow/internal/engine/framebuffer"
	"github.com/Faultbox/earthglow/internal/engine/geometry"
	"github.com/Faultbox/earthglow/internal/engine/renderer/shaders"
	"github.com/Faultbox/earthglow/internal/engine/shader"
	"github.com/Faultbox/earthglow/internal/engine/texture"
	"github.com/Faultbox/earthglow/internal/scene"
	"github.com/Faultbox/earthglow/internal/starfield"
	gm "github.com/Faultbox/earthglow/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// SRGB enables the sRGB framebuffer and sRGB colour textures.
	SRGB bool
}

// Renderer handles all OpenGL rendering. It implements view.Surface.
type Renderer struct {
	config Config
	log    *zap.Logger
	loader *texture.Loader

	programs map[scene.MaterialKind]*shader.Program

	meshes map[*geometry.Geometry]*meshBuffers
	clouds map[*starfield.Cloud]*pointBuffers

	placeholder uint32
	textures    map[string]uint32
	linear      map[string]bool

	viewport [4]int32
	draws    []draw
	capture  *framebuffer.Target
}

type meshBuffers struct {
	vao, vbo uint32
	count    int32
}

type pointBuffers struct {
	vao, vbo uint32
	count    int32
}

type draw struct {
	node     *scene.Node
	world    gm.Mat4
	material scene.Material
	depth    float32
}

// New creates a renderer. Textures are requested from loader and uploaded
// as they finish decoding.
// Must be called after the OpenGL context is created.
func New(cfg Config, loader *texture.Loader, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		config:   cfg,
		log:      log,
		loader:   loader,
		programs: make(map[scene.MaterialKind]*shader.Program),
		meshes:   make(map[*geometry.Geometry]*meshBuffers),
		clouds:   make(map[*starfield.Cloud]*pointBuffers),
		textures: make(map[string]uint32),
		linear:   make(map[string]bool),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	if cfg.SRGB {
		gl.Enable(gl.FRAMEBUFFER_SRGB)
	}

	sources := []struct {
		kind     scene.MaterialKind
		vertex   string
		fragment string
	}{
		{scene.Phong, shaders.MeshVertexShader, shaders.PhongFragmentShader},
		{scene.Basic, shaders.MeshVertexShader, shaders.BasicFragmentShader},
		{scene.Fresnel, shaders.FresnelVertexShader, shaders.FresnelFragmentShader},
		{scene.PointSprite, shaders.PointsVertexShader, shaders.PointsFragmentShader},
	}
	for _, s := range sources {
		prog, err := shader.NewProgram(s.kind.String(), s.vertex, s.fragment)
		if err != nil {
			r.deletePrograms()
			return nil, fmt.Errorf("failed to create shader program: %w", err)
		}
		r.programs[s.kind] = prog
	}

	r.placeholder = texture.Placeholder()
	r.SetSize(cfg.Width, cfg.Height)

	return r, nil
}

// Size returns the drawable size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetSize resizes the drawable and resets the viewport to cover it.
func (r *Renderer) SetSize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.SetViewport(0, 0, width, height)
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetViewport sets the GL viewport.
func (r *Renderer) SetViewport(x, y, width, height int) {
	r.viewport = [4]int32{int32(x), int32(y), int32(width), int32(height)}
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

// SetScissor sets the scissor rectangle.
func (r *Renderer) SetScissor(x, y, width, height int) {
	gl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

// SetScissorTest toggles the scissor test.
func (r *Renderer) SetScissorTest(enabled bool) {
	if enabled {
		gl.Enable(gl.SCISSOR_TEST)
	} else {
		gl.Disable(gl.SCISSOR_TEST)
	}
}

// ClearDepth clears the depth buffer.
func (r *Renderer) ClearDepth() {
	gl.DepthMask(true)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

// Render clears the current viewport to the scene background and draws the
// graph from cam. Opaque drawables go first; transparent ones follow sorted
// back to front.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective) {
	r.poll()

	bg := r.color(s.Background)
	gl.ClearColor(bg.X, bg.Y, bg.Z, 1)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.draws = r.draws[:0]
	s.Root.Walk(func(n *scene.Node, world gm.Mat4) {
		var m scene.Material
		switch d := n.Drawable.(type) {
		case *scene.Mesh:
			m = d.Material
		case *scene.Points:
			m = d.Material
		default:
			return
		}
		depth := world.Translation().Distance(cam.Position)
		r.draws = append(r.draws, draw{node: n, world: world, material: m, depth: depth})
	})
	sort.SliceStable(r.draws, func(i, j int) bool {
		a, b := r.draws[i], r.draws[j]
		if a.material.Transparent != b.material.Transparent {
			return !a.material.Transparent
		}
		if a.material.Transparent {
			return a.depth > b.depth
		}
		return false
	})

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	viewProj := proj.Mul(view)

	for _, d := range r.draws {
		r.applyBlending(d.material)
		switch drawable := d.node.Drawable.(type) {
		case *scene.Mesh:
			r.drawMesh(s, drawable, d.world, viewProj, cam.Position)
		case *scene.Points:
			r.drawPoints(drawable, d.world, view, proj)
		}
	}

	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
	gl.BindVertexArray(0)
}

func (r *Renderer) applyBlending(m scene.Material) {
	gl.DepthMask(m.DepthWrite)
	if !m.Transparent && m.Blending == scene.NormalBlending {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	switch m.Blending {
	case scene.AdditiveBlending:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	default:
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	}
}

func (r *Renderer) drawMesh(s *scene.Scene, mesh *scene.Mesh, world, viewProj gm.Mat4, eye gm.Vec3) {
	m := mesh.Material
	prog := r.programs[m.Kind]
	if prog == nil {
		return
	}
	buf := r.meshBuffers(mesh.Geometry)

	prog.Use()
	prog.SetMat4("uModel", world)
	prog.SetMat4("uViewProj", viewProj)
	prog.SetMat3("uNormalMatrix", world.NormalMatrix())

	switch m.Kind {
	case scene.Phong:
		r.bindTexture(prog, "uMap", 0, m.Map, false)
		r.bindTexture(prog, "uBumpMap", 1, m.BumpMap, true)
		prog.SetFloat("uBumpScale", m.BumpScale)
		prog.SetVec3("uColor", r.color(m.Color))
		prog.SetFloat("uOpacity", m.Opacity)
		prog.SetVec3("uAmbient", r.color(s.Ambient.Color).Scale(s.Ambient.Intensity))
		prog.SetBool("uSunEnabled", s.Sun.Enabled())
		prog.SetVec3("uSunDirection", s.Sun.Direction)
		prog.SetVec3("uSunRadiance", r.color(s.Sun.Color).Scale(s.Sun.Intensity))
		prog.SetVec3("uCameraPos", eye)
	case scene.Basic:
		r.bindTexture(prog, "uMap", 0, m.Map, false)
		prog.SetVec3("uColor", r.color(m.Color))
		prog.SetFloat("uOpacity", m.Opacity)
	case scene.Fresnel:
		prog.SetVec3("uCameraPos", eye)
		prog.SetFloat("uFresnelBias", m.Fresnel.Bias)
		prog.SetFloat("uFresnelScale", m.Fresnel.Scale)
		prog.SetFloat("uFresnelPower", m.Fresnel.Power)
		prog.SetVec3("uRimColor", r.color(m.Fresnel.RimColor))
		prog.SetVec3("uFacingColor", r.color(m.Fresnel.FacingColor))
	}

	gl.BindVertexArray(buf.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, buf.count)
}

func (r *Renderer) drawPoints(points *scene.Points, world, view, proj gm.Mat4) {
	buf := r.pointBuffers(points.Cloud)
	if buf.count == 0 {
		return
	}
	m := points.Material
	prog := r.programs[scene.PointSprite]

	prog.Use()
	prog.SetMat4("uModel", world)
	prog.SetMat4("uView", view)
	prog.SetMat4("uProjection", proj)
	prog.SetFloat("uSize", m.Size)
	prog.SetFloat("uScale", float32(r.viewport[3])/2)
	prog.SetVec3("uColor", r.color(m.Color))
	prog.SetFloat("uOpacity", m.Opacity)
	r.bindTexture(prog, "uMap", 0, m.Map, false)

	gl.BindVertexArray(buf.vao)
	gl.DrawArrays(gl.POINTS, 0, buf.count)
}

// color converts an sRGB material colour to the linear space the shaders
// work in when the sRGB framebuffer is enabled.
func (r *Renderer) color(c gm.Vec3) gm.Vec3 {
	if !r.config.SRGB {
		return c
	}
	return gm.Vec3{X: srgbToLinear(c.X), Y: srgbToLinear(c.Y), Z: srgbToLinear(c.Z)}
}

func srgbToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow((float64(c)+0.055)/1.055, 2.4))
}

func (r *Renderer) meshBuffers(g *geometry.Geometry) *meshBuffers {
	if buf, ok := r.meshes[g]; ok {
		return buf
	}

	data := g.Interleaved()
	buf := &meshBuffers{count: int32(g.VertexCount())}
	gl.GenVertexArrays(1, &buf.vao)
	gl.GenBuffers(1, &buf.vbo)
	gl.BindVertexArray(buf.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	}

	const stride = 8 * 4
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)

	r.meshes[g] = buf
	return buf
}

func (r *Renderer) pointBuffers(c *starfield.Cloud) *pointBuffers {
	if buf, ok := r.clouds[c]; ok {
		return buf
	}

	n := c.Len()
	buf := &pointBuffers{count: int32(n)}
	if n == 0 {
		r.clouds[c] = buf
		return buf
	}

	// Positions followed by colours in a single buffer.
	data := make([]float32, 0, n*6)
	data = append(data, c.Positions...)
	data = append(data, c.Colors...)

	gl.GenVertexArrays(1, &buf.vao)
	gl.GenBuffers(1, &buf.vbo)
	gl.BindVertexArray(buf.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 3*4, uintptr(n*3*4))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)

	r.clouds[c] = buf
	return buf
}

// bindTexture binds the texture for path, requesting it on first use. The
// placeholder stays bound until the decode finishes, and for good if it fails.
func (r *Renderer) bindTexture(prog *shader.Program, uniform string, unit uint32, path string, linear bool) {
	id := r.placeholder
	if path != "" {
		if tex, ok := r.textures[path]; ok {
			id = tex
		} else if r.loader != nil && r.loader.Status(path) == texture.Unknown {
			r.linear[path] = linear
			r.loader.Request(path)
		}
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, id)
	prog.SetInt(uniform, int32(unit))
}

// Preload requests every texture the scene references.
func (r *Renderer) Preload(s *scene.Scene) {
	if r.loader == nil {
		return
	}
	s.Root.Walk(func(n *scene.Node, _ gm.Mat4) {
		var m scene.Material
		switch d := n.Drawable.(type) {
		case *scene.Mesh:
			m = d.Material
		case *scene.Points:
			m = d.Material
		default:
			return
		}
		if m.BumpMap != "" {
			r.linear[m.BumpMap] = true
		}
	})
	for _, path := range s.Textures() {
		r.loader.Request(path)
	}
}

func (r *Renderer) poll() {
	if r.loader == nil {
		return
	}
	r.loader.Poll(func(path string, img *image.RGBA) {
		if old, ok := r.textures[path]; ok {
			texture.Delete(old)
		}
		r.textures[path] = texture.Upload(img, r.config.SRGB && !r.linear[path])
	})
}

// Capture renders s into an offscreen target the size of the drawable and
// returns bottom-up RGBA rows. The window's back buffer is undefined after a
// swap, so screenshots never read it.
func (r *Renderer) Capture(s *scene.Scene, cam *camera.Perspective) ([]byte, int, int, error) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("capture: empty drawable %dx%d", w, h)
	}
	if r.capture == nil {
		target, err := framebuffer.New(w, h, r.config.SRGB)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("capture: %w", err)
		}
		r.capture = target
	}
	r.capture.Resize(w, h)

	restore := r.capture.Bind()
	r.Render(s, cam)
	restore()

	w, h = r.capture.Size()
	return r.capture.ReadPixels(), w, h, nil
}

// Release frees the GPU buffers and textures created for s. Programs and the
// placeholder stay until Close.
func (r *Renderer) Release(s *scene.Scene) {
	s.Root.Walk(func(n *scene.Node, _ gm.Mat4) {
		switch d := n.Drawable.(type) {
		case *scene.Mesh:
			if buf, ok := r.meshes[d.Geometry]; ok {
				gl.DeleteVertexArrays(1, &buf.vao)
				gl.DeleteBuffers(1, &buf.vbo)
				delete(r.meshes, d.Geometry)
			}
		case *scene.Points:
			if buf, ok := r.clouds[d.Cloud]; ok {
				if buf.vao != 0 {
					gl.DeleteVertexArrays(1, &buf.vao)
					gl.DeleteBuffers(1, &buf.vbo)
				}
				delete(r.clouds, d.Cloud)
			}
		}
	})
	for _, path := range s.Textures() {
		if id, ok := r.textures[path]; ok {
			texture.Delete(id)
			delete(r.textures, path)
		}
	}
	r.log.Debug("scene resources released")
}

// Close cleans up renderer resources.
func (r *Renderer) Close() error {
	r.log.Info("closing renderer")

	var err error
	if r.loader != nil {
		err = multierr.Append(err, r.loader.Close())
	}
	for _, buf := range r.meshes {
		gl.DeleteVertexArrays(1, &buf.vao)
		gl.DeleteBuffers(1, &buf.vbo)
	}
	for _, buf := range r.clouds {
		if buf.vao != 0 {
			gl.DeleteVertexArrays(1, &buf.vao)
			gl.DeleteBuffers(1, &buf.vbo)
		}
	}
	for _, id := range r.textures {
		texture.Delete(id)
	}
	if r.capture != nil {
		r.capture.Destroy()
		r.capture = nil
	}
	if r.placeholder != 0 {
		texture.Delete(r.placeholder)
		r.placeholder = 0
	}
	r.deletePrograms()

	r.meshes = map[*geometry.Geometry]*meshBuffers{}
	r.clouds = map[*starfield.Cloud]*pointBuffers{}
	r.textures = map[string]uint32{}

	if code := gl.GetError(); code != gl.NO_ERROR {
		err = multierr.Append(err, fmt.Errorf("gl error 0x%x during teardown", code))
	}
	return err
}

func (r *Renderer) deletePrograms() {
	for kind, p := range r.programs {
		p.Delete()
		delete(r.programs, kind)
	}
}
