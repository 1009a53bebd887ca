// Package command turns textual sidebar commands into [sidebar.Table] calls.
//
// The adapter is the only place user input is validated: item names are
// limited to [sidebar.MaxNameLength] characters and titles to
// [sidebar.MaxTitleLength], both measured after color codes are substituted.
// Input that fails validation never reaches the table.
//
// Supported verbs (case-insensitive):
//
//	title <text...>       set the sidebar title
//	set <name> [point]    set an item's score
//	add <name> [amount]   add to an item's score
//	remove <name>         remove an item
//	removeall             tear the whole sidebar down
//	clear                 remove every item, keep the title
//	list                  show the current items
//
// Anything else, including a verb missing its required argument, is reported
// as unhandled so the host can print [Usage].
package command

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jpalmerr/sidebar"
)

const (
	// Prefix starts every message returned by the adapter.
	Prefix = "[SS]"

	// DefaultColorMarker introduces a color code in user input.
	DefaultColorMarker = '&'

	// DefaultStyleEscape is the host's formatting escape character.
	DefaultStyleEscape = '§'

	// errorColor is the host color code for red.
	errorColor = 'c'
)

// integerPattern is the accepted shape of point and amount arguments. Nine
// digits always fit in an int32.
var integerPattern = regexp.MustCompile(`^-?[0-9]{1,9}$`)

// IntegerMode selects how malformed point and amount arguments are treated.
type IntegerMode string

const (
	// IntegerLenient treats a missing or malformed integer as 0.
	IntegerLenient IntegerMode = "lenient"

	// IntegerStrict rejects a missing or malformed integer with a usage message.
	IntegerStrict IntegerMode = "strict"
)

// Display is the subset of [sidebar.Table] the adapter drives.
type Display interface {
	SetTitle(title string)
	SetScore(name string, point int32)
	AddScore(name string, amount int32)
	RemoveScore(name string)
	Unregister()
	Clear()
	Items() []sidebar.Item
}

// Result is the outcome of one command.
type Result struct {
	// Handled is false when the verb was not recognised or lacked its
	// required arguments. Message is empty in that case.
	Handled bool `json:"handled"`

	// OK is false when the command was recognised but rejected.
	OK bool `json:"ok"`

	// Message is a single line for the command sender.
	Message string `json:"message"`
}

// Adapter validates commands and applies them to a [Display].
//
// Adapter holds no state of its own beyond configuration and is only as
// safe for concurrent use as the Display it wraps.
type Adapter struct {
	display     Display
	mode        IntegerMode
	escape      rune
	colorCodes  *regexp.Regexp
	errorPrefix string
	logger      *slog.Logger
}

// New creates an [Adapter] for display.
//
// Returns an error if display is nil or any option is invalid.
func New(display Display, opts ...Option) (*Adapter, error) {
	if display == nil {
		return nil, errors.New("display cannot be nil")
	}

	cfg := &adapterConfig{
		mode:   IntegerLenient,
		marker: DefaultColorMarker,
		escape: DefaultStyleEscape,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		display:     display,
		mode:        cfg.mode,
		escape:      cfg.escape,
		colorCodes:  colorCodePattern(cfg.marker),
		errorPrefix: string(cfg.escape) + string(errorColor) + Prefix,
		logger:      logger,
	}, nil
}

// Execute runs the command described by args, where args[0] is the verb.
func (a *Adapter) Execute(args []string) Result {
	if len(args) == 0 {
		return Result{}
	}

	verb := strings.ToLower(args[0])
	switch verb {
	case "removeall":
		a.display.Unregister()
		return a.ok("Sidebar removed.")
	case "clear":
		a.display.Clear()
		return a.ok("All items removed.")
	case "list":
		return a.list()
	}

	// every remaining verb needs at least one argument
	if len(args) < 2 {
		return Result{}
	}

	switch verb {
	case "title":
		return a.title(args[1:])
	case "set":
		return a.score(args[1:], false)
	case "add":
		return a.score(args[1:], true)
	case "remove":
		return a.remove(args[1])
	}

	return Result{}
}

func (a *Adapter) title(words []string) Result {
	title := a.ReplaceColorCodes(strings.Join(words, " "))
	if !sidebar.ValidTitle(title) {
		return a.reject(fmt.Sprintf("Title must be at most %d characters.", sidebar.MaxTitleLength))
	}

	a.display.SetTitle(title)
	return a.ok(fmt.Sprintf("Title set to %q.", title))
}

func (a *Adapter) score(args []string, add bool) Result {
	name := a.ReplaceColorCodes(args[0])
	if !sidebar.ValidName(name) {
		return a.reject(fmt.Sprintf("Item name must be at most %d characters.", sidebar.MaxNameLength))
	}

	raw := ""
	if len(args) >= 2 {
		raw = args[1]
	}
	value, ok := a.parseInteger(raw)
	if !ok {
		verb, arg := "set", "point"
		if add {
			verb, arg = "add", "amount"
		}
		return a.reject(fmt.Sprintf("Usage: %s <name> <%s> (%s must be an integer of up to 9 digits).", verb, arg, arg))
	}

	if add {
		a.display.AddScore(name, value)
	} else {
		a.display.SetScore(name, value)
	}
	return a.ok(fmt.Sprintf("Score of %q updated.", name))
}

func (a *Adapter) remove(arg string) Result {
	name := a.ReplaceColorCodes(arg)
	if !sidebar.ValidName(name) {
		return a.reject(fmt.Sprintf("Item name must be at most %d characters.", sidebar.MaxNameLength))
	}

	a.display.RemoveScore(name)
	return a.ok(fmt.Sprintf("Score of %q removed.", name))
}

func (a *Adapter) list() Result {
	items := a.display.Items()
	if len(items) == 0 {
		return a.ok("No items.")
	}

	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s=%d", it.Name, it.Score)
	}
	return a.ok(fmt.Sprintf("%d items: %s", len(items), strings.Join(parts, ", ")))
}

// parseInteger converts raw according to the adapter's [IntegerMode].
func (a *Adapter) parseInteger(raw string) (int32, bool) {
	if integerPattern.MatchString(raw) {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err == nil {
			return int32(n), true
		}
	}
	if a.mode == IntegerStrict {
		return 0, false
	}
	return 0, true
}

// ReplaceColorCodes substitutes the color marker followed by a color or
// format code (0-9, a-f, k-o, r) with the host's style escape.
func (a *Adapter) ReplaceColorCodes(s string) string {
	return substitute(a.colorCodes, s, a.escape)
}

func (a *Adapter) ok(msg string) Result {
	a.logger.Debug("command applied", "message", msg)
	return Result{Handled: true, OK: true, Message: Prefix + " " + msg}
}

func (a *Adapter) reject(msg string) Result {
	a.logger.Debug("command rejected", "message", msg)
	return Result{Handled: true, OK: false, Message: a.errorPrefix + " " + msg}
}

// SubstituteColorCodes is [Adapter.ReplaceColorCodes] for callers without
// an adapter, such as configuration validation.
func SubstituteColorCodes(s string, marker, escape rune) string {
	return substitute(colorCodePattern(marker), s, escape)
}

// substitute swaps the marker of every match for escape. Matches always end
// in a single ASCII code character.
func substitute(re *regexp.Regexp, s string, escape rune) string {
	return re.ReplaceAllStringFunc(s, func(match string) string {
		return string(escape) + match[len(match)-1:]
	})
}

// colorCodePattern builds the substitution pattern for marker.
func colorCodePattern(marker rune) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(string(marker)) + `([0-9a-fk-or])`)
}

// Usage returns the help text hosts show for unhandled commands.
func Usage() []string {
	return []string{
		"title <text>         - set the sidebar title (max 32 characters)",
		"set <name> <point>   - set an item's score (name max 16 characters)",
		"add <name> <amount>  - add to an item's score",
		"remove <name>        - remove an item",
		"removeall            - remove the sidebar",
		"clear                - remove every item but keep the title",
		"list                 - show the current items",
	}
}

// validMarker reports whether r can serve as a color marker.
func validMarker(r rune) bool {
	return r != utf8.RuneError && r != ' '
}
