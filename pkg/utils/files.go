package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gochip8/pkg/chip8"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadROM reads a program image and checks that it fits above 0x200.
func ReadROM(path string) ([]byte, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, err
	}
	rom, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}
	if limit := chip8.MemorySize - int(chip8.ProgramStart); len(rom) > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", chip8.ErrROMTooLarge, path, len(rom), limit)
	}
	if len(rom) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return rom, nil
}

// ReplaceExt swaps the extension of path for ext, appending it when path
// has none.
func ReplaceExt(path, ext string) string {
	old := filepath.Ext(path)
	if old == "" {
		return path + ext
	}
	return strings.TrimSuffix(path, old) + ext
}

// ROMTitle is the file name without directory or extension, used for window
// titles.
func ROMTitle(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
