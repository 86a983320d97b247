package ports

import (
	"path/filepath"
	"strings"
)

var (
	AudioExtensions = []string{"wav", "mp3"}
	VideoExtensions = []string{"mp4", "mkv", "avi", "mov"}
)

// NormalizeExt приводит расширение к виду "wav": без точки, в нижнем регистре.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ExtOf — расширение имени файла в нормализованном виде.
func ExtOf(filename string) string {
	return NormalizeExt(filepath.Ext(filename))
}

// BaseName — имя файла без каталога и расширения.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func IsAudioExt(ext string) bool { return contains(AudioExtensions, NormalizeExt(ext)) }

func IsVideoExt(ext string) bool { return contains(VideoExtensions, NormalizeExt(ext)) }

func IsAcceptedExt(ext string) bool { return IsAudioExt(ext) || IsVideoExt(ext) }

// AcceptedExtensions — сначала аудио, потом видео, для upload-контрола.
func AcceptedExtensions() []string {
	out := make([]string, 0, len(AudioExtensions)+len(VideoExtensions))
	out = append(out, AudioExtensions...)
	return append(out, VideoExtensions...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
