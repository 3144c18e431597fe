// Package config loads editor settings.
//
// Settings come from three places, later ones winning:
//
//  1. Default()
//  2. a TOML or YAML file, picked by extension (.toml, .yaml, .yml)
//  3. KORU_ environment variables, for example KORU_LOG_LEVEL=debug or
//     KORU_UNDO_EDIT_DELAY=500ms
//
// Example TOML:
//
//	[log]
//	level = "info"
//	file = "/tmp/koru.log"
//
//	[broker]
//	channel_capacity = 100
//
//	[undo]
//	edit_delay = "1s"
//	store = "~/.local/state/koru/undo.db"
//
//	[session]
//	init_script = "~/.config/koru/init.lua"
//	tab_width = 4
//
//	[theme]
//	Accent = "#cba6f7"
package config
