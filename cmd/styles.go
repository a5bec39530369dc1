package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/moyu-x/sort-folder/internal"
	"github.com/moyu-x/sort-folder/pkg/categorizer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginBottom(1)

	successTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")).
				Bold(true).
				MarginBottom(1)

	warningTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				Bold(true).
				MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Faint(true)
)

func renderReport(report *internal.Report) string {
	var title string
	switch {
	case report.DryRun:
		title = titleStyle.Render("演练结果")
	case report.OK():
		title = successTitleStyle.Render("整理完成")
	default:
		title = warningTitleStyle.Render("整理完成，部分文件处理失败")
	}

	body := statsBoxStyle.Render(report.String())
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func renderCategories() string {
	var b strings.Builder
	for _, c := range categorizer.All() {
		exts := categorizer.Extensions(c)
		line := hintStyle.Render("其他所有扩展名")
		if len(exts) > 0 {
			line = strings.Join(exts, " ")
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Width(10).Render(string(c)), line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("分类"), strings.TrimRight(b.String(), "\n"))
}
