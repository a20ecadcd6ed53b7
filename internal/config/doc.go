// Package config loads quill settings.
//
// Settings come from a TOML or YAML file, chosen by extension, layered on
// top of built-in defaults and then overridden by QUILL_* environment
// variables:
//
//	s, err := config.Load("quill.toml")
//	if err != nil {
//		return err
//	}
//	if err := config.ApplyEnv(&s, os.LookupEnv); err != nil {
//		return err
//	}
//	ed := engine.New(s.Options()...)
//
// A missing file yields the defaults. Watch reloads a file when it changes
// so hosts can apply new settings to open editors.
//
// Example quill.toml:
//
//	[history]
//	max_size = 500
//
//	[search]
//	limit = 10000
//	case_sensitive = false
//
//	[wrap]
//	enabled = true
//	column = 80
//
//	[editor]
//	tab_text = "    "
//	page_rows = 30
//
//	[log]
//	level = "debug"
package config
