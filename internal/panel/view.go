package panel

import (
	"github.com/odyssey-erp/userpanel/internal/users"
)

// View is a render-ready projection of the panel.
type View struct {
	Status       Status        `json:"status"`
	Error        string        `json:"error,omitempty"`
	Rows         []Row         `json:"rows"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
}

// Row is one user line. Secondary holds the email when DisplayName shows a
// nickname.
type Row struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Secondary   string     `json:"secondary,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	AvatarName  string     `json:"avatar_name"`
	Role        string     `json:"role,omitempty"`
	IsSelf      bool       `json:"is_self"`
	SelfTag     string     `json:"self_tag,omitempty"`
	Actions     []MenuItem `json:"actions,omitempty"`
}

// MenuItem is one entry of a row's action menu. Role is set for role
// binding entries.
type MenuItem struct {
	Label  string `json:"label"`
	Role   string `json:"role,omitempty"`
	Delete bool   `json:"delete,omitempty"`
}

// Confirmation describes the open delete confirmation.
type Confirmation struct {
	UserID       string `json:"user_id"`
	Prompt       string `json:"prompt"`
	ConfirmLabel string `json:"confirm_label"`
	CancelLabel  string `json:"cancel_label"`
}

// View projects the current cache and flow state.
func (p *Panel) View() View {
	v := View{Status: p.cache.Status(), Rows: []Row{}}
	switch v.Status {
	case StatusError:
		if err := p.cache.Err(); err != nil {
			v.Error = p.localizer.Localize(MsgLoadFailed, err.Error())
		}
		return v
	case StatusLoading:
		return v
	}

	for _, u := range p.cache.Users() {
		v.Rows = append(v.Rows, p.row(u))
	}
	if staged, ok := p.flow.Staged(); ok {
		name := staged.DisplayName(p.opts.UseNickname)
		v.Confirmation = &Confirmation{
			UserID:       staged.ID,
			Prompt:       p.localizer.Localize(MsgConfirmDelete, name),
			ConfirmLabel: p.localizer.Localize(MsgDelete),
			CancelLabel:  p.localizer.Localize(MsgCancel),
		}
	}
	return v
}

func (p *Panel) row(u users.User) Row {
	r := Row{
		ID:          u.ID,
		DisplayName: u.DisplayName(p.opts.UseNickname),
		Email:       u.Email,
		AvatarURL:   u.AvatarURL(),
		AvatarName:  u.DisplayName(true),
		Role:        u.RoleName(),
		IsSelf:      u.ID == p.actor.ID,
	}
	if r.DisplayName != u.Email {
		r.Secondary = u.Email
	}
	if r.IsSelf {
		r.SelfTag = p.localizer.Localize(MsgSelfTag)
	}
	menu := p.menuFor(u)
	if !menu.Visible {
		return r
	}
	for _, role := range menu.BindTargets {
		r.Actions = append(r.Actions, MenuItem{
			Label: p.localizer.Localize(MsgBindRoleAction, role),
			Role:  role,
		})
	}
	if menu.CanDelete {
		r.Actions = append(r.Actions, MenuItem{Label: p.localizer.Localize(MsgDeleteAction), Delete: true})
	}
	return r
}
