// Package script drives an editor from Lua.
//
// A Runner owns a sandboxed gopher-lua state with only the base, table,
// string and math libraries opened. Scripts reach the editor through the
// global ed table, whose functions map one-to-one onto editor intents:
//
//	ed.type("hello")      -- printable characters, grouped for undo
//	ed.newline()
//	ed.move("home")       -- left, right, word_left, word_right, home, end,
//	                      -- doc_start, doc_end, up, down, page_up, page_down
//	ed.find("foo")        -- returns the match count
//	ed.replace_all("bar") -- returns the number replaced
//	ed.group("rename", function()
//	  ed.select(1, 1, 1, 4)
//	  ed.insert("quux")
//	end)
//
// Lines and columns are 1-based on the Lua side. Columns count characters,
// not bytes.
//
// print writes to the Runner's output, or to its logger when no output is
// set. Loading code at runtime (load, loadstring, dofile, loadfile, require)
// is disabled.
//
// Like the underlying LState, a Runner serializes its own calls; the editor
// it drives may still be used concurrently from other goroutines.
package script
