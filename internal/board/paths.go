package board

import (
	"path/filepath"
)

func boardDir(root string) string {
	return filepath.Join(root, ".projectboard")
}

func configPath(root string) string { return filepath.Join(boardDir(root), "config.yaml") }
func exportDir(root string) string  { return filepath.Join(boardDir(root), "export") }
func serverStatePath(root string) string {
	return filepath.Join(boardDir(root), "server.json")
}
func serverLogPath(root string) string { return filepath.Join(boardDir(root), "server.log") }

// DefaultExportDir is where `export --html` writes when no --out is given.
func DefaultExportDir(root string) string { return exportDir(root) }

// ServerLogPath is where the background server and the terminal UI log.
func ServerLogPath(root string) string { return serverLogPath(root) }

// resolvePath makes p absolute against root unless it already is.
func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
