// Package orgs renders the allowed-org listing for terminal output.
package orgs

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zerkz/dxmcp/internal/domain"
)

func Render(orgList []domain.Org) string {
	return renderView(orgList, newStyles())
}

func renderView(orgList []domain.Org, s styles) string {
	lines := []string{
		s.title.Render("Allowed Orgs"),
		s.header.Render(fmt.Sprintf("orgs: %d", len(orgList))),
	}

	if len(orgList) == 0 {
		lines = append(lines, s.empty.Render("No allowed orgs. Check the allow-list and local authorizations."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, org := range orgList {
		lines = append(lines, s.section.Render(renderOrg(org, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderOrg(org domain.Org, s styles) string {
	parts := []string{
		s.username.Render(orgTitle(org, s)),
	}

	if len(org.Aliases) > 0 {
		parts = append(parts, s.detail.Render(fmt.Sprintf("aliases: %s", strings.Join(org.Aliases, ", "))))
	}

	if org.InstanceURL != "" {
		parts = append(parts, s.detail.Render(fmt.Sprintf("instance: %s", org.InstanceURL)))
	}

	if org.ConnectedState != "" {
		parts = append(parts, s.detail.Render(fmt.Sprintf("state: %s", org.ConnectedState)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func orgTitle(org domain.Org, s styles) string {
	title := string(org.Username)

	for _, badge := range orgBadges(org) {
		title += " " + s.badge.Render("["+badge+"]")
	}

	if org.IsExpired {
		title += " " + s.warning.Render("[expired]")
	}

	return title
}

func orgBadges(org domain.Org) []string {
	badges := make([]string, 0, 2)
	if org.IsDevHub {
		badges = append(badges, "dev hub")
	}
	if org.IsScratch {
		badges = append(badges, "scratch")
	}
	if org.IsSandbox {
		badges = append(badges, "sandbox")
	}
	return badges
}
