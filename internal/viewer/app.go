// Package viewer is the interactive OpenGL 4.1 PBR viewer.
package viewer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"fbx-pbr-viewer/internal/camera"
	"fbx-pbr-viewer/internal/mesh"
	"fbx-pbr-viewer/internal/viewer/shaders"
)

// Light is one shader point light.
type Light struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Options configures the window and the scene uniforms.
type Options struct {
	Title          string
	Width, Height  int
	VertexShader   string // "" = embedded
	FragmentShader string // "" = embedded
	ClearColor     float32
	Camera         *camera.Camera
	Model          mgl32.Mat4
	LightPos       mgl32.Vec3
	Lights         []Light
}

// App owns the window and the GL context. Create it on the main thread and
// keep every GL call on that thread.
type App struct {
	opts     Options
	window   *glfw.Window
	program  *Program
	fallback []uint32
	cam      *camera.Camera

	width, height int

	// Last mouse position; firstMouse avoids a jump when the cursor enters.
	lastX, lastY float64
	firstMouse   bool
}

// NewApp initializes GLFW, opens the window and compiles the shaders.
func NewApp(opts Options) (*App, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("viewer: glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("viewer: create window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("viewer: gl init: %w", err)
	}

	a := &App{
		opts:       opts,
		window:     window,
		cam:        opts.Camera,
		width:      opts.Width,
		height:     opts.Height,
		lastX:      float64(opts.Width) / 2,
		lastY:      float64(opts.Height) / 2,
		firstMouse: true,
	}
	if a.cam == nil {
		a.cam = camera.New(mgl32.Vec3{0, 0, 3}, camera.DefaultZoom)
	}
	if a.opts.Model == (mgl32.Mat4{}) {
		a.opts.Model = mgl32.Ident4()
	}

	window.SetFramebufferSizeCallback(a.framebufferSizeCallback)
	window.SetCursorPosCallback(a.mouseCallback)
	window.SetScrollCallback(a.scrollCallback)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	fbw, fbh := window.GetFramebufferSize()
	a.width, a.height = fbw, fbh
	gl.Viewport(0, 0, int32(fbw), int32(fbh))
	gl.Enable(gl.DEPTH_TEST)

	vs, fs, err := shaders.Sources(opts.VertexShader, opts.FragmentShader)
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.program, err = NewProgram(vs, fs); err != nil {
		a.Close()
		return nil, err
	}
	if a.fallback, err = fallbackTextures(); err != nil {
		a.Close()
		return nil, err
	}

	a.program.Use()
	for unit, name := range shaders.Samplers() {
		a.program.SetInt(name, int32(unit))
	}
	return a, nil
}

// SetModel replaces the model matrix uniform.
func (a *App) SetModel(m mgl32.Mat4) {
	a.opts.Model = m
}

// Run draws m every frame until the window is closed or Escape is pressed.
func (a *App) Run(m *mesh.Mesh) {
	g := UploadMesh(m)
	defer g.Delete()

	lastFrame := glfw.GetTime()
	for !a.window.ShouldClose() {
		currentFrame := glfw.GetTime()
		deltaTime := float32(currentFrame - lastFrame)
		lastFrame = currentFrame

		a.processInput(deltaTime)

		c := a.opts.ClearColor
		gl.ClearColor(c, c, c, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		a.setUniforms()
		g.Draw(a.fallback)

		a.window.SwapBuffers()
		glfw.PollEvents()
	}
}

func (a *App) setUniforms() {
	p := a.program
	p.Use()

	aspect := float32(1)
	if a.height > 0 {
		aspect = float32(a.width) / float32(a.height)
	}
	p.SetMat4(shaders.Projection, a.cam.Projection(aspect))
	p.SetMat4(shaders.View, a.cam.ViewMatrix())
	p.SetVec3(shaders.CamPos, a.cam.Position)
	p.SetMat4(shaders.Model, a.opts.Model)
	p.SetVec3(shaders.LightPos, a.opts.LightPos)
	for i, l := range a.opts.Lights {
		if i == shaders.LightCount {
			break
		}
		p.SetVec3(shaders.LightPosition(i), l.Position)
		p.SetVec3(shaders.LightColor(i), l.Color)
	}
}

// Close releases the shader program and the window.
func (a *App) Close() {
	if a.program != nil {
		a.program.Delete()
		a.program = nil
	}
	if len(a.fallback) > 0 {
		gl.DeleteTextures(int32(len(a.fallback)), &a.fallback[0])
		a.fallback = nil
	}
	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}
	glfw.Terminate()
}

func (a *App) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	a.width, a.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (a *App) mouseCallback(_ *glfw.Window, x, y float64) {
	if a.firstMouse {
		a.lastX, a.lastY = x, y
		a.firstMouse = false
	}
	xOffset := x - a.lastX
	yOffset := a.lastY - y // y grows downwards
	a.lastX, a.lastY = x, y

	a.cam.ProcessMouseMovement(float32(xOffset), float32(yOffset))
}

func (a *App) scrollCallback(_ *glfw.Window, _, yOffset float64) {
	a.cam.ProcessMouseScroll(float32(yOffset))
}

func (a *App) processInput(dt float32) {
	w := a.window
	if w.GetKey(glfw.KeyEscape) == glfw.Press {
		w.SetShouldClose(true)
	}
	keys := []struct {
		key glfw.Key
		dir camera.Movement
	}{
		{glfw.KeyW, camera.Forward},
		{glfw.KeyS, camera.Backward},
		{glfw.KeyA, camera.Left},
		{glfw.KeyD, camera.Right},
	}
	for _, k := range keys {
		if w.GetKey(k.key) == glfw.Press {
			a.cam.ProcessKeyboard(k.dir, dt)
		}
	}
}
