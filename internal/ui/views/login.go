package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jpalma/trak/internal/api"
	"github.com/jpalma/trak/internal/ui/keys"
	"github.com/jpalma/trak/internal/ui/styles"
)

// LoginView is the sign-in / sign-up screen.
type LoginView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	registering bool
	email       textinput.Model
	password    textinput.Model
	name        textinput.Model
	focusIdx    int // 0=email, 1=password, (2=name), last=submit
	submitting  bool
	errMsg      string
}

// NewLoginView creates the login screen
func NewLoginView(client *api.Client) *LoginView {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 100

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	name := textinput.New()
	name.Placeholder = "name"
	name.CharLimit = 100

	email.Focus()

	return &LoginView{
		client:   client,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		email:    email,
		password: password,
		name:     name,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

// fieldCount is the number of focusable slots including the submit button
func (v *LoginView) fieldCount() int {
	if v.registering {
		return 4
	}
	return 3
}

func (v *LoginView) submit() tea.Cmd {
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	name := strings.TrimSpace(v.name.Value())
	if email == "" || password == "" {
		v.errMsg = "email and password are required"
		return nil
	}
	if v.registering && name == "" {
		v.errMsg = "name is required"
		return nil
	}

	v.submitting = true
	v.errMsg = ""
	registering := v.registering

	return func() tea.Msg {
		ctx := context.Background()
		if registering {
			// Register does not sign in; chain a login afterward.
			_, err := v.client.Register(ctx, api.RegisterInput{Email: email, Password: password, Name: name})
			if err != nil {
				return err
			}
		}
		resp, err := v.client.Login(ctx, email, password)
		if err != nil {
			return err
		}
		return LoggedIn{User: resp.User}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case error:
		v.submitting = false
		v.errMsg = api.Message(msg, "sign in failed, try again")
		return v, nil

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case msg.String() == "ctrl+r":
			v.registering = !v.registering
			v.errMsg = ""
			v.focusIdx = 0
			v.updateFocus()
			return v, textinput.Blink

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % v.fieldCount()
			v.updateFocus()
			return v, nil

		case msg.String() == "shift+tab":
			n := v.fieldCount()
			v.focusIdx = (v.focusIdx + n - 1) % n
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx == v.fieldCount()-1 {
				return v, v.submit()
			}
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.email, cmd = v.email.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	case 2:
		if v.registering {
			v.name, cmd = v.name.Update(msg)
		}
	}
	return v, cmd
}

func (v *LoginView) updateFocus() {
	v.email.Blur()
	v.password.Blur()
	v.name.Blur()
	switch v.focusIdx {
	case 0:
		v.email.Focus()
	case 1:
		v.password.Focus()
	case 2:
		if v.registering {
			v.name.Focus()
		}
	}
}

// View renders the view
func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 40)

	title := "Sign In"
	btnLabel := " Sign In "
	hint := "Ctrl+R: create an account"
	if v.registering {
		title = "Create Account"
		btnLabel = " Register "
		hint = "Ctrl+R: back to sign in"
	}

	emailStyle, passStyle, nameStyle := s.Input, s.Input, s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		emailStyle = s.InputFocused
	case 1:
		passStyle = s.InputFocused
	case 2:
		if v.registering {
			nameStyle = s.InputFocused
		} else {
			btnStyle = s.ButtonFocused
		}
	case 3:
		btnStyle = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render(title),
		"",
		"Email:",
		emailStyle.Width(inputWidth).Render(v.email.View()),
		"",
		"Password:",
		passStyle.Width(inputWidth).Render(v.password.View()),
	}
	if v.registering {
		rows = append(rows,
			"",
			"Name:",
			nameStyle.Width(inputWidth).Render(v.name.View()),
		)
	}
	rows = append(rows, "", btnStyle.Render(btnLabel))

	if v.submitting {
		rows = append(rows, "", s.TitleMuted.Render("Signing in..."))
	}
	if v.errMsg != "" {
		rows = append(rows, "", s.ErrorBanner.Render(v.errMsg))
	}
	rows = append(rows, "", s.TitleMuted.Render(hint))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
