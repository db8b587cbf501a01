package session

import (
	"testing"

	"github.com/matjam/shmpaper/internal/wayland"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	o, err := OptionsFromConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), o)
}

func TestOptionsFromConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("shell", "XDG")
	viper.Set("width", 640)
	viper.Set("height", 480)
	viper.Set("layer", "overlay")
	viper.Set("anchor", "top,left")
	viper.Set("margin", []int{4, 8})
	viper.Set("keyboard_interactivity", "exclusive")
	viper.Set("stop_key", 16)

	o, err := OptionsFromConfig()
	require.NoError(t, err)
	assert.Equal(t, ShellXdg, o.Shell)
	assert.Equal(t, 640, o.Width)
	assert.Equal(t, wayland.LayerOverlay, o.Layer)
	assert.Equal(t, wayland.AnchorTop|wayland.AnchorLeft, o.Anchor)
	assert.Equal(t, wayland.Margins{Top: 4, Right: 8, Bottom: 4, Left: 8}, o.Margins)
	assert.Equal(t, wayland.KeyboardExclusive, o.KeyboardInteractivity)
	assert.Equal(t, uint32(16), o.StopKey)
}

func TestOptionsRejected(t *testing.T) {
	for key, value := range map[string]any{
		"shell":                  "wm",
		"width":                  0,
		"layer":                  "middle",
		"anchor":                 "north",
		"margin":                 []int{1, 2, 3},
		"keyboard_interactivity": "sometimes",
	} {
		t.Run(key, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			viper.Set(key, value)
			_, err := OptionsFromConfig()
			assert.Error(t, err)
		})
	}
}
