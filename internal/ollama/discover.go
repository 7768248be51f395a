// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
package ollama

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// =============================================================================
// LOCAL MODEL DISCOVERY
// =============================================================================

// ModelSource identifies which tool a discovered model file belongs to.
type ModelSource string

const (
	SourceOllama   ModelSource = "ollama"
	SourceLMStudio ModelSource = "lmstudio"
	SourceOther    ModelSource = "other"
)

// LocalModel describes a model file found on disk, independent of
// whether the Ollama server is running.
type LocalModel struct {
	Name      string
	Path      string
	SizeBytes int64
	Source    ModelSource
	Format    string // "gguf", "bin", "safetensors", or "blob"
}

// DiscoverLocalModels scans the filesystem for model files from Ollama
// and LM Studio installations. It works without a running server, which
// makes it useful for first-run setup screens.
//
// Ollama stores manifests under models/manifests/.../<model>/<tag> and
// content-addressed blobs under models/blobs; LM Studio keeps plain
// GGUF files under its models directory.
func DiscoverLocalModels() []LocalModel {
	var models []LocalModel

	for _, dir := range ollamaModelDirs() {
		models = append(models, scanOllamaDir(dir)...)
	}
	for _, dir := range lmStudioModelDirs() {
		models = append(models, scanModelFiles(dir, SourceLMStudio)...)
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].Name < models[j].Name
	})

	return models
}

// ollamaModelDirs returns the candidate Ollama model directories for
// the current platform.
func ollamaModelDirs() []string {
	var dirs []string

	if custom := os.Getenv("OLLAMA_MODELS"); custom != "" {
		dirs = append(dirs, custom)
	}

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".ollama", "models"))
	}

	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			dirs = append(dirs, filepath.Join(localAppData, "ollama", "models"))
		}
	}

	return dirs
}

// lmStudioModelDirs returns the candidate LM Studio model directories.
func lmStudioModelDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	return []string{
		filepath.Join(home, ".cache", "lm-studio", "models"),
		filepath.Join(home, ".lmstudio", "models"),
	}
}

// scanOllamaDir walks an Ollama models directory. Model names come from
// the manifests tree where the layout is .../<model>/<tag>; the blobs
// themselves are content-addressed and carry no name.
func scanOllamaDir(root string) []LocalModel {
	manifests := filepath.Join(root, "manifests")
	if _, err := os.Stat(manifests); err != nil {
		return nil
	}

	var models []LocalModel

	filepath.WalkDir(manifests, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		// manifests/registry.ollama.ai/library/<model>/<tag>
		tag := d.Name()
		model := filepath.Base(filepath.Dir(path))

		info, err := d.Info()
		if err != nil {
			return nil
		}

		models = append(models, LocalModel{
			Name:      model + ":" + tag,
			Path:      path,
			SizeBytes: modelBlobSize(root, info),
			Source:    SourceOllama,
			Format:    "blob",
		})
		return nil
	})

	return models
}

// modelBlobSize sums the blob directory when cheap, falling back to the
// manifest size. Manifests are tiny, so the blob total is what users
// care about; an exact per-model attribution would require parsing the
// manifest JSON, which is not worth it for a listing.
func modelBlobSize(root string, manifestInfo fs.FileInfo) int64 {
	total := manifestInfo.Size()

	blobs := filepath.Join(root, "blobs")
	entries, err := os.ReadDir(blobs)
	if err != nil {
		return total
	}

	var blobTotal int64
	for _, e := range entries {
		if info, err := e.Info(); err == nil {
			blobTotal += info.Size()
		}
	}
	if blobTotal > 0 {
		return blobTotal
	}
	return total
}

// scanModelFiles walks a directory tree collecting loose model files.
func scanModelFiles(root string, source ModelSource) []LocalModel {
	if _, err := os.Stat(root); err != nil {
		return nil
	}

	var models []LocalModel

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		format, ok := modelFileFormat(d.Name())
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		models = append(models, LocalModel{
			Name:      name,
			Path:      path,
			SizeBytes: info.Size(),
			Source:    source,
			Format:    format,
		})
		return nil
	})

	return models
}

// modelFileFormat classifies a file name as a model file.
func modelFileFormat(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gguf":
		return "gguf", true
	case ".bin":
		return "bin", true
	case ".safetensors":
		return "safetensors", true
	}
	if name == "model" {
		return "blob", true
	}
	return "", false
}
