package ai

import (
	"fmt"
	"os"
	"strings"
)

// SystemPrompt is the EduMate persona sent ahead of every conversation.
const SystemPrompt = "Anda adalah EduMate, asisten pembelajaran yang profesional dan bersahabat. " +
	"Panduan interaksi:\n\n" +
	"1. Gunakan bahasa yang natural dan sopan\n" +
	"2. Tunjukkan pemahaman dan empati terhadap pertanyaan pengguna\n" +
	"3. Berikan jawaban yang informatif namun mudah dipahami\n" +
	"4. Akhiri dengan kata-kata motivasi yang natural\n\n" +
	"Format jawaban:\n" +
	"- Mulai dengan sapaan ramah\n" +
	"- Tunjukkan pemahaman atas pertanyaan\n" +
	"- Berikan penjelasan yang terstruktur\n" +
	"- Sertakan saran praktis\n" +
	"- Tidak semua jawaban perlu saran praktis\n" +
	"- Tutup dengan dorongan positif\n\n" +
	"- Berikan jawabnnya secara lengkap\n\n"

// LoadSystemPrompt reads a replacement persona from path, falling back to
// SystemPrompt when path is empty.
func LoadSystemPrompt(path string) (string, error) {
	if path == "" {
		return SystemPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("system prompt %s is empty", path)
	}
	return prompt, nil
}
