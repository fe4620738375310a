package panel

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys used by the panel.
const (
	MsgBindRoleAction = "action.user.role.binding"
	MsgDeleteAction   = "action.member.delete"
	MsgConfirmDelete  = "confirm.delete.member"
	MsgCancel         = "action.cancel"
	MsgDelete         = "action.delete"
	MsgRoleBound      = "notify.role.bound"
	MsgUserDeleted    = "notify.user.deleted"
	MsgSelfTag        = "tag.me"
	MsgLoadFailed     = "panel.load.failed"
)

var messagesEnglish = map[string]string{
	MsgBindRoleAction: "Change role to %s",
	MsgDeleteAction:   "Remove member",
	MsgConfirmDelete:  "Remove %s from this workspace? This cannot be undone.",
	MsgCancel:         "Cancel",
	MsgDelete:         "Delete",
	MsgRoleBound:      "%s is now %s",
	MsgUserDeleted:    "%s was removed",
	MsgSelfTag:        "me",
	MsgLoadFailed:     "Users could not be loaded: %s",
}

var messagesIndonesian = map[string]string{
	MsgBindRoleAction: "Ubah peran menjadi %s",
	MsgDeleteAction:   "Hapus anggota",
	MsgConfirmDelete:  "Hapus %s dari workspace ini? Tindakan ini tidak dapat dibatalkan.",
	MsgCancel:         "Batal",
	MsgDelete:         "Hapus",
	MsgRoleBound:      "%s sekarang %s",
	MsgUserDeleted:    "%s telah dihapus",
	MsgSelfTag:        "saya",
	MsgLoadFailed:     "Pengguna gagal dimuat: %s",
}

var supportedLanguages = []language.Tag{language.English, language.Indonesian}

// CatalogLocalizer resolves panel messages from an x/text catalog.
type CatalogLocalizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewCatalogLocalizer builds a localizer for locale. Unsupported or malformed
// locales fall back to English.
func NewCatalogLocalizer(locale string) (*CatalogLocalizer, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range map[language.Tag]map[string]string{
		language.English:    messagesEnglish,
		language.Indonesian: messagesIndonesian,
	} {
		for key, msg := range msgs {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("panel: catalog %s %s: %w", tag, key, err)
			}
		}
	}
	tag := matchLanguage(locale)
	return &CatalogLocalizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}, nil
}

// Language returns the resolved language.
func (l *CatalogLocalizer) Language() language.Tag {
	return l.tag
}

// Localize formats the message for key. Unknown keys are returned verbatim.
func (l *CatalogLocalizer) Localize(key string, args ...any) string {
	if _, ok := messagesEnglish[key]; !ok {
		return key
	}
	return l.printer.Sprintf(key, args...)
}

func matchLanguage(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return language.English
	}
	desired, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, idx, confidence := language.NewMatcher(supportedLanguages).Match(desired)
	if confidence == language.No {
		return language.English
	}
	return supportedLanguages[idx]
}

// KeyLocalizer returns keys followed by their arguments. It is the default
// when no localizer is configured.
type KeyLocalizer struct{}

// Localize joins key and args with spaces.
func (KeyLocalizer) Localize(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, key)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}
