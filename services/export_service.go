package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gingfrederik/docx"

	"ai_prompt_factory/models"
)

// ExportBatchDocx 把一批候选导出为 Word 文档，便于人工审阅
func ExportBatchDocx(path string, batchID string, candidates []models.Candidate) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建导出目录失败: %w", err)
		}
	}

	f := docx.NewFile()

	p := f.AddParagraph()
	run := p.AddText("AI Prompt Batch Review")
	run.Size(20)

	p = f.AddParagraph()
	run = p.AddText(fmt.Sprintf("Batch: %s | Candidates: %d", batchID, len(candidates)))
	run.Size(10)
	run.Color("808080")
	f.AddParagraph()

	for i, c := range candidates {
		p = f.AddParagraph()
		run = p.AddText(fmt.Sprintf("%d. %s", i+1, c.Title))
		run.Size(16)

		p = f.AddParagraph()
		run = p.AddText(fmt.Sprintf("Niche: %s | Template: %s | Score: %.1f | Source: %s",
			c.Niche, c.TemplateType, c.QualityScore, c.Source))
		run.Size(10)
		run.Color("808080")

		p = f.AddParagraph()
		run = p.AddText("Keywords: " + strings.Join(c.Keywords, ", "))
		run.Size(10)

		if c.Description != "" {
			f.AddParagraph().AddText(c.Description)
		}
		for _, para := range strings.Split(c.Body, "\n\n") {
			if para = strings.TrimSpace(para); para != "" {
				f.AddParagraph().AddText(para)
			}
		}
		f.AddParagraph().AddText("--------------------------------------------------")
	}

	return f.Save(path)
}
