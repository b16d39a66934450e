// Package vantage provides 2D cameras and per-camera visibility culling for
// [Ebitengine].
//
// A [Scene] holds a flat, ordered list of [Object] values and any number of
// [Camera] viewports. Every frame each visible camera rebuilds its transform,
// culls the display list twice (once for drawing, once for pointer hit
// testing) and hands the results to the renderer and the input dispatcher.
//
// # Quick start
//
//	scene := vantage.NewScene()
//	cam, _ := scene.AddCamera(vantage.CameraConfig{Name: "main", Width: 640, Height: 480})
//	cam.SetBounds(0, 0, 4000, 3000)
//
//	hero := vantage.NewObject("hero", 32, 32)
//	hero.X, hero.Y = 200, 150
//	scene.Add(hero)
//	cam.Follow(hero, 0, 0, 0.1)
//
//	vantage.Run(scene, vantage.RunConfig{Title: "Game", Width: 640, Height: 480})
//
// For full control, implement [ebiten.Game] yourself and call [Scene.Update]
// and [Scene.Draw].
//
// # Cameras
//
// A camera maps world space to screen space with
//
//	T(viewportX + w/2, viewportY + h/2) * R(rotation) * S(zoomX, zoomY) * T(-w/2, -h/2)
//
// applied to (world - scroll * scrollFactor). Rotation and zoom pivot on the
// viewport center. Scroll can be clamped to a bounds rectangle, animated with
// [Camera.PanTo], [Camera.ZoomTo] and [Camera.RotateTo] (via [gween]), or
// driven by [Camera.Follow].
//
// A zoom of zero on either axis makes the transform non-invertible. That is
// not an error: for such frames the cull returns its input unchanged and
// [Camera.CameraToWorld] passes points through.
//
// # Culling
//
// [Culler] is generic over [Candidate], so any type that reports an ID and
// bounds can be culled, including ECS entities (see the vantage/ecs
// subpackage). It keeps anything that may overlap the viewport: false
// positives near the edges are allowed, false negatives are not. Objects
// without a size are always kept. Per-camera ignore sets are applied by the
// Scene before culling.
//
// # Debugging
//
// [Scene.SetDebugMode] logs per-camera cull stats every frame through
// [zerolog]. [Scene.SetOverlay] draws them on screen. [LoadScript] drives
// cameras and synthetic pointer input from a YAML step script.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [zerolog]: https://github.com/rs/zerolog
package vantage
