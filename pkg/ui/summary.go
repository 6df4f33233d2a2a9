package ui

import (
	"fmt"
	"strings"

	"igprofile/pkg/models"
	"igprofile/pkg/ui/tui"
)

// SummaryLines returns the profile summary as label/value rows followed
// by the engagement rows for each non-empty bucket.
func SummaryLines(s *models.ProfileSummary) [][2]string {
	return append(profileRows(s), engagementRows(s)...)
}

func profileRows(s *models.ProfileSummary) [][2]string {
	return [][2]string{
		{"Username", "@" + s.Username},
		{"Full Name", s.FullName},
		{"Followers", Thousands(s.FollowersCount)},
		{"Following", Thousands(s.FollowingCount)},
		{"Total Posts", Thousands(s.PostsCount)},
		{"Posts Scraped", Thousands(int64(len(s.Posts)))},
		{"Reels Scraped", Thousands(int64(len(s.Reels)))},
	}
}

func engagementRows(s *models.ProfileSummary) [][2]string {
	var rows [][2]string
	if len(s.Posts) > 0 {
		rows = append(rows, [2]string{"Posts Engagement", engagement(models.TotalEngagement(s.Posts))})
	}
	if len(s.Reels) > 0 {
		rows = append(rows, [2]string{"Reels Engagement", engagement(models.TotalEngagement(s.Reels))})
	}
	return rows
}

func engagement(e models.Engagement) string {
	return fmt.Sprintf("%s likes, %s comments", Thousands(e.Likes), Thousands(e.Comments))
}

// RenderSummary draws the summary inside a bordered panel.
func RenderSummary(s *models.ProfileSummary) string {
	profile, totals := profileRows(s), engagementRows(s)
	rows := append(profile, totals...)

	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}

	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Profile Summary"))
	for i, r := range rows {
		if i == len(profile) && len(totals) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(tui.LabelStyle.Render(fmt.Sprintf("%-*s", width+1, r[0]+":")))
		b.WriteString(" ")
		b.WriteString(tui.ValueStyle.Render(r[1]))
	}
	return tui.PanelStyle.Render(b.String())
}

// PrintSummary writes the rendered summary to Out.
func PrintSummary(s *models.ProfileSummary) {
	fmt.Fprintln(Out, RenderSummary(s))
}
