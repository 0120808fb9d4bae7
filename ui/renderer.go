// Package ui renders chat traffic on a terminal.
// It only formats what the hub sends, it never decides anything about chat state.
package ui

import (
	"chat-hub/domain"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const timeLayout = "15:04:05"

var (
	systemStyle = color.New(color.FgYellow)
	selfStyle   = color.New(color.FgGreen, color.OpBold)
	senderStyle = color.New(color.FgCyan, color.OpBold)
	groupStyle  = color.New(color.FgMagenta)
	bannerStyle = color.New(color.BgBlack, color.FgGreen, color.OpBold)
	errorStyle  = color.New(color.FgRed)
	hintStyle   = color.New(color.FgDarkGray)
)

type Renderer struct {
	out      io.Writer
	colours  bool
	location *time.Location
	self     string
}

func NewRenderer(out io.Writer, colours bool) *Renderer {
	return &Renderer{out: out, colours: colours, location: time.Local}
}

// WithLocation sets the zone timestamps are shown in.
func (r *Renderer) WithLocation(location *time.Location) *Renderer {
	r.location = location
	return r
}

// SetSelf names the local user, whose own messages are shown as "You".
func (r *Renderer) SetSelf(name string) { r.self = name }

func (r *Renderer) paint(style color.Style, s string) string {
	if !r.colours {
		return s
	}
	return style.Render(s)
}

func (r *Renderer) println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// FormatMessage returns one line such as "[10:00:00] bob (g1): hello".
func (r *Renderer) FormatMessage(m domain.Message) string {
	stamp := "[" + m.Timestamp.In(r.location).Format(timeLayout) + "]"
	if m.IsSystem() {
		return stamp + " " + r.paint(systemStyle, m.Content)
	}

	sender := r.paint(senderStyle, m.Sender)
	if m.Sender == r.self && r.self != "" {
		sender = r.paint(selfStyle, "You")
	}
	if m.Kind == domain.GroupKind {
		sender += " " + r.paint(groupStyle, "("+m.Target+")")
	}
	return fmt.Sprintf("%s %s: %s", stamp, sender, m.Content)
}

func (r *Renderer) Message(m domain.Message) {
	r.println(r.FormatMessage(m))
}

func (r *Renderer) History(title string, messages []domain.Message) {
	r.println(r.paint(bannerStyle, fmt.Sprintf(" ====== %s ====== ", title)))
	if len(messages) == 0 {
		r.println(r.paint(hintStyle, "(no messages yet)"))
		return
	}
	for _, m := range messages {
		r.Message(m)
	}
}

// Notification renders anything pushed by the hub.
func (r *Renderer) Notification(n domain.Notification) {
	switch v := n.(type) {
	case domain.IncomingMessage:
		r.Message(v.Message)
	case domain.GroupInvitation:
		r.println(r.paint(bannerStyle, fmt.Sprintf(" %s invited you to join %s ", v.Inviter, v.GroupName)))
		r.println(r.paint(hintStyle, fmt.Sprintf("Type /join %s to accept", v.GroupName)))
	case domain.GroupDisbandedNotice:
		r.println(r.paint(systemStyle, fmt.Sprintf("Group %s was disbanded by %s", v.GroupName, v.Admin)))
	}
}

func (r *Renderer) Info(s string) {
	r.println(r.paint(systemStyle, s))
}

func (r *Renderer) Error(err error) {
	r.println(r.paint(errorStyle, "Error: "+err.Error()))
}

func (r *Renderer) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func (r *Renderer) Users(names []string) {
	if len(names) == 0 {
		r.Info("Nobody else is online")
		return
	}
	table := r.table([]string{"Online"})
	for _, name := range names {
		table.Append([]string{name})
	}
	table.Render()
}

func (r *Renderer) Groups(groups []domain.GroupSummary) {
	if len(groups) == 0 {
		r.Info("You are in no group")
		return
	}
	table := r.table([]string{"Group", "Members", "Status"})
	for _, g := range groups {
		status := "Invited"
		if g.IsMember {
			status = "Member"
		}
		table.Append([]string{g.Name, strconv.Itoa(g.MemberCount), status})
	}
	table.Render()
}

// Members lists members first, then pending invitees.
func (r *Renderer) Members(g domain.GroupView) {
	table := r.table([]string{"User", "Status"})
	for _, name := range g.Members {
		status := "Member"
		if name == g.Admin {
			status = "Admin"
		}
		table.Append([]string{name, status})
	}
	for _, name := range g.PendingInvites {
		table.Append([]string{name, "Invited"})
	}
	table.Render()
}

func (r *Renderer) Help() {
	table := r.table([]string{"Command", "Description"})
	table.AppendBulk(Commands)
	table.Render()
}

// Commands is the help of the interactive client.
var Commands = [][]string{
	{"/users", "list online users"},
	{"/chat <user>", "open a direct chat and show its history"},
	{"/history <user>", "show the direct history with a user"},
	{"/create <group>", "create a group you administer"},
	{"/groups", "list your groups and invitations"},
	{"/open <group>", "open a group chat and show its history"},
	{"/invite <user>", "invite a user to the open group"},
	{"/join <group>", "accept an invitation"},
	{"/leave", "leave the open group"},
	{"/disband", "disband the open group (admin only)"},
	{"/members", "show members of the open group"},
	{"/search <text>", "search your conversations"},
	{"/broadcast <text>", "send a system message to everyone"},
	{"/exit", "close the current chat"},
	{"/help", "show this help"},
	{"/quit", "disconnect"},
}
