package wayland

// Interface names as advertised by the registry.
const (
	InterfaceDisplay      = "wl_display"
	InterfaceRegistry     = "wl_registry"
	InterfaceCallback     = "wl_callback"
	InterfaceCompositor   = "wl_compositor"
	InterfaceSurface      = "wl_surface"
	InterfaceShm          = "wl_shm"
	InterfaceShmPool      = "wl_shm_pool"
	InterfaceBuffer       = "wl_buffer"
	InterfaceSeat         = "wl_seat"
	InterfaceKeyboard     = "wl_keyboard"
	InterfaceOutput       = "wl_output"
	InterfaceXdgWmBase    = "xdg_wm_base"
	InterfaceXdgSurface   = "xdg_surface"
	InterfaceXdgToplevel  = "xdg_toplevel"
	InterfaceLayerShell   = "zwlr_layer_shell_v1"
	InterfaceLayerSurface = "zwlr_layer_surface_v1"
)

const displayID uint32 = 1

// wl_display
const (
	opDisplaySync        = 0
	opDisplayGetRegistry = 1

	evDisplayError    = 0
	evDisplayDeleteID = 1
)

// wl_registry
const (
	opRegistryBind = 0

	evRegistryGlobal       = 0
	evRegistryGlobalRemove = 1
)

// wl_callback
const evCallbackDone = 0

// wl_compositor
const opCompositorCreateSurface = 0

// wl_surface
const (
	opSurfaceDestroy      = 0
	opSurfaceAttach       = 1
	opSurfaceDamage       = 2
	opSurfaceCommit       = 6
	opSurfaceDamageBuffer = 9

	evSurfaceEnter = 0
	evSurfaceLeave = 1
)

// wl_shm
const (
	opShmCreatePool = 0
	opShmRelease    = 1

	evShmFormat = 0
)

// wl_shm_pool
const (
	opShmPoolCreateBuffer = 0
	opShmPoolDestroy      = 1
	opShmPoolResize       = 2
)

// wl_buffer
const (
	opBufferDestroy = 0

	evBufferRelease = 0
)

// wl_seat
const (
	opSeatGetKeyboard = 1
	opSeatRelease     = 3

	evSeatCapabilities = 0
	evSeatName         = 1
)

// wl_keyboard
const (
	opKeyboardRelease = 0

	evKeyboardKeymap     = 0
	evKeyboardEnter      = 1
	evKeyboardLeave      = 2
	evKeyboardKey        = 3
	evKeyboardModifiers  = 4
	evKeyboardRepeatInfo = 5
)

// wl_output
const (
	opOutputRelease = 0

	evOutputGeometry    = 0
	evOutputMode        = 1
	evOutputDone        = 2
	evOutputScale       = 3
	evOutputName        = 4
	evOutputDescription = 5
)

// xdg_wm_base
const (
	opXdgWmBaseDestroy       = 0
	opXdgWmBaseGetXdgSurface = 2
	opXdgWmBasePong          = 3

	evXdgWmBasePing = 0
)

// xdg_surface
const (
	opXdgSurfaceDestroy      = 0
	opXdgSurfaceGetToplevel  = 1
	opXdgSurfaceAckConfigure = 4

	evXdgSurfaceConfigure = 0
)

// xdg_toplevel
const (
	opXdgToplevelDestroy  = 0
	opXdgToplevelSetTitle = 2
	opXdgToplevelSetAppID = 3

	evXdgToplevelConfigure = 0
	evXdgToplevelClose     = 1
)

// zwlr_layer_shell_v1
const (
	opLayerShellGetLayerSurface = 0
	opLayerShellDestroy         = 1
)

// zwlr_layer_surface_v1
const (
	opLayerSurfaceSetSize                  = 0
	opLayerSurfaceSetAnchor                = 1
	opLayerSurfaceSetExclusiveZone         = 2
	opLayerSurfaceSetMargin                = 3
	opLayerSurfaceSetKeyboardInteractivity = 4
	opLayerSurfaceAckConfigure             = 6
	opLayerSurfaceDestroy                  = 7

	evLayerSurfaceConfigure = 0
	evLayerSurfaceClosed    = 1
)
