package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/khoahotran/cvnova/internal/domain/cv"
)

var ErrQuit = errors.New("quit")

type Command struct {
	Name string
	Sub  string
	Arg  string
}

// ParseCommand splits a REPL line into a command word, an optional sub-command
// and the raw remainder.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, errors.New("empty command")
	}
	name, rest, _ := strings.Cut(line, " ")
	cmd := Command{Name: strings.ToLower(name)}
	rest = strings.TrimSpace(rest)

	switch cmd.Name {
	case "skill", "lang", "exp", "edu", "info":
		sub, arg, _ := strings.Cut(rest, " ")
		if sub == "" {
			return Command{}, fmt.Errorf("%s needs a sub-command", cmd.Name)
		}
		cmd.Sub = strings.ToLower(sub)
		cmd.Arg = strings.TrimSpace(arg)
	case "name", "template", "status":
		if rest == "" {
			return Command{}, fmt.Errorf("%s needs a value", cmd.Name)
		}
		cmd.Arg = rest
	case "show", "save", "quit", "exit", "help":
	default:
		return Command{}, fmt.Errorf("unknown command %q, try help", cmd.Name)
	}
	return cmd, nil
}

const Help = `commands:
  name <text>                                set the document name
  template <name>                            choose a template
  status <Draft|Published|Archived>
  info <name|email|phone|location|objective> <value>
  skill add|rm <skill>
  lang add|rm <language>
  exp add <title>|<company>|<duration>|<description>
  exp rm <number>
  edu add <degree>|<school>|<year>
  edu rm <number>
  show | save | quit`

// Run applies cmd to the editor. ErrQuit is returned for quit/exit.
func Run(ctx context.Context, e *Editor, cmd Command, out io.Writer) error {
	switch cmd.Name {
	case "help":
		fmt.Fprintln(out, Help)
	case "show":
		Print(out, e.Document())
	case "save":
		return e.Save(ctx)
	case "quit", "exit":
		return ErrQuit
	case "name":
		e.Edit(func(d *cv.Document) { d.Name = cmd.Arg })
	case "template":
		e.Edit(func(d *cv.Document) { d.Template = cmd.Arg })
	case "status":
		status, ok := cv.NormalizeStatus(cv.Status(cmd.Arg))
		if !ok || status == "" {
			return cv.ErrInvalidStatus
		}
		e.Edit(func(d *cv.Document) { d.Status = status })
	case "info":
		return setInfo(e, cmd.Sub, cmd.Arg)
	case "skill":
		return editList(e, cmd, func(d *cv.Document) *[]string { return &d.Skills })
	case "lang":
		return editList(e, cmd, func(d *cv.Document) *[]string { return &d.Languages })
	case "exp":
		return editExperience(e, cmd)
	case "edu":
		return editEducation(e, cmd)
	}
	return nil
}

func setInfo(e *Editor, field, value string) error {
	var set func(p *cv.PersonalInfo)
	switch field {
	case "name":
		set = func(p *cv.PersonalInfo) { p.Name = value }
	case "email":
		set = func(p *cv.PersonalInfo) { p.Email = value }
	case "phone":
		set = func(p *cv.PersonalInfo) { p.Phone = value }
	case "location":
		set = func(p *cv.PersonalInfo) { p.Location = value }
	case "objective":
		set = func(p *cv.PersonalInfo) { p.Objective = value }
	default:
		return fmt.Errorf("unknown personal info field %q", field)
	}
	e.Edit(func(d *cv.Document) { set(&d.PersonalInfo) })
	return nil
}

func editList(e *Editor, cmd Command, list func(d *cv.Document) *[]string) error {
	if cmd.Arg == "" {
		return fmt.Errorf("%s %s needs a value", cmd.Name, cmd.Sub)
	}
	switch cmd.Sub {
	case "add":
		e.Edit(func(d *cv.Document) {
			items := list(d)
			for _, it := range *items {
				if it == cmd.Arg {
					return
				}
			}
			*items = append(*items, cmd.Arg)
		})
	case "rm":
		e.Edit(func(d *cv.Document) {
			items := list(d)
			kept := make([]string, 0, len(*items))
			for _, it := range *items {
				if it != cmd.Arg {
					kept = append(kept, it)
				}
			}
			*items = kept
		})
	default:
		return fmt.Errorf("unknown %s sub-command %q", cmd.Name, cmd.Sub)
	}
	return nil
}

func splitFields(arg string, n int) []string {
	parts := strings.SplitN(arg, "|", n)
	for len(parts) < n {
		parts = append(parts, "")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseIndex(arg string, size int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > size {
		return 0, fmt.Errorf("no entry number %q", arg)
	}
	return n - 1, nil
}

func editExperience(e *Editor, cmd Command) error {
	switch cmd.Sub {
	case "add":
		f := splitFields(cmd.Arg, 4)
		if f[0] == "" {
			return errors.New("experience needs at least a title")
		}
		e.Edit(func(d *cv.Document) {
			d.Experience = append(d.Experience, cv.Experience{Title: f[0], Company: f[1], Duration: f[2], Description: f[3]})
		})
	case "rm":
		i, err := parseIndex(cmd.Arg, len(e.Document().Experience))
		if err != nil {
			return err
		}
		e.Edit(func(d *cv.Document) {
			d.Experience = append(d.Experience[:i:i], d.Experience[i+1:]...)
		})
	default:
		return fmt.Errorf("unknown exp sub-command %q", cmd.Sub)
	}
	return nil
}

func editEducation(e *Editor, cmd Command) error {
	switch cmd.Sub {
	case "add":
		f := splitFields(cmd.Arg, 3)
		if f[0] == "" {
			return errors.New("education needs at least a degree")
		}
		e.Edit(func(d *cv.Document) {
			d.Education = append(d.Education, cv.Education{Degree: f[0], School: f[1], Year: f[2]})
		})
	case "rm":
		i, err := parseIndex(cmd.Arg, len(e.Document().Education))
		if err != nil {
			return err
		}
		e.Edit(func(d *cv.Document) {
			d.Education = append(d.Education[:i:i], d.Education[i+1:]...)
		})
	default:
		return fmt.Errorf("unknown edu sub-command %q", cmd.Sub)
	}
	return nil
}

// Print renders the document as plain text.
func Print(out io.Writer, d cv.Document) {
	id := d.ID
	if id == "" {
		id = "(unsaved)"
	}
	fmt.Fprintf(out, "%s  [%s]  id=%s\n", orDash(d.Name), orDash(string(d.Status)), id)
	fmt.Fprintf(out, "template: %s\n", orDash(d.Template))
	p := d.PersonalInfo
	fmt.Fprintf(out, "%s <%s> %s %s\n", orDash(p.Name), p.Email, p.Phone, p.Location)
	if p.Objective != "" {
		fmt.Fprintf(out, "objective: %s\n", p.Objective)
	}
	for i, x := range d.Experience {
		fmt.Fprintf(out, "exp %d. %s @ %s (%s) %s\n", i+1, x.Title, x.Company, x.Duration, x.Description)
	}
	for i, x := range d.Education {
		fmt.Fprintf(out, "edu %d. %s, %s %s\n", i+1, x.Degree, x.School, x.Year)
	}
	fmt.Fprintf(out, "skills: %s\n", strings.Join(d.Skills, ", "))
	fmt.Fprintf(out, "languages: %s\n", strings.Join(d.Languages, ", "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
