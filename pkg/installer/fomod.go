package installer

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/beevik/etree"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadModuleConfig reads and parses a FOMOD ModuleConfig.xml
func LoadModuleConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read installer description").
			WithDetail("path", path)
	}
	cfg, err := ParseModuleConfig(data)
	if err != nil {
		if merr, ok := err.(*errors.ModlinkError); ok {
			return nil, merr.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// ParseModuleConfig parses FOMOD XML. Any failure, including a config
// that fails Validate, is reported as one InvalidInstallerConfig.
func ParseModuleConfig(data []byte) (*Config, error) {
	logger := logging.GetLogger("installer.fomod")

	utf8, err := toUTF8(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInstallerConfig, "cannot decode installer description")
	}

	doc := etree.NewDocument()
	doc.ReadSettings.ValidateInput = true
	if err := doc.ReadFromBytes(utf8); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInstallerConfig, "malformed installer description")
	}

	root := doc.Root()
	if root == nil || root.Tag != "config" {
		return nil, errors.New(errors.ErrInvalidInstallerConfig, "installer description has no <config> root")
	}

	p := &parser{}
	cfg := p.config(root)
	if len(p.problems) > 0 {
		return nil, errors.Newf(errors.ErrInvalidInstallerConfig, "invalid installer description: %s", strings.Join(p.problems, "; ")).
			WithDetail("problems", p.problems)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("name", cfg.Name).
		Int("pages", len(cfg.Pages)).
		Int("required", len(cfg.Required)).
		Int("conditional", len(cfg.Conditional)).
		Msg("installer description parsed")
	return cfg, nil
}

// toUTF8 transcodes UTF-16 input (detected by its byte order mark) and
// drops a UTF-8 byte order mark.
func toUTF8(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		out, _, err := transform.Bytes(dec, data)
		return out, err
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	}
	return data, nil
}

type parser struct {
	problems []string
}

func (p *parser) fail(format string, args ...interface{}) {
	p.problems = append(p.problems, fmt.Sprintf(format, args...))
}

func (p *parser) config(root *etree.Element) *Config {
	cfg := &Config{}

	if name := root.SelectElement("moduleName"); name != nil {
		cfg.Name = strings.TrimSpace(name.Text())
	}
	if cfg.Name == "" {
		p.fail("missing moduleName")
	}
	if img := root.SelectElement("moduleImage"); img != nil {
		cfg.Image = normalizePath(img.SelectAttrValue("path", ""))
	}
	if deps := root.SelectElement("moduleDependencies"); deps != nil {
		logger := logging.GetLogger("installer.fomod")
		logger.Debug().
			Str("dependencies", p.composite(deps).String()).
			Msg("module dependencies are not checked")
	}

	if req := root.SelectElement("requiredInstallFiles"); req != nil {
		cfg.Required = p.files(req)
	}

	if steps := root.SelectElement("installSteps"); steps != nil {
		for _, step := range ordered(steps, steps.SelectElements("installStep")) {
			cfg.Pages = append(cfg.Pages, p.page(step))
		}
	}

	if cond := root.SelectElement("conditionalFileInstalls"); cond != nil {
		if patterns := cond.SelectElement("patterns"); patterns != nil {
			for _, pat := range patterns.SelectElements("pattern") {
				ci := ConditionalInstall{}
				if deps := pat.SelectElement("dependencies"); deps != nil {
					ci.When = p.composite(deps)
				}
				if files := pat.SelectElement("files"); files != nil {
					ci.Installs = p.files(files)
				}
				cfg.Conditional = append(cfg.Conditional, ci)
			}
		}
	}

	return cfg
}

func (p *parser) page(step *etree.Element) Page {
	page := Page{Name: step.SelectAttrValue("name", "")}
	if vis := step.SelectElement("visible"); vis != nil {
		page.Visible = p.composite(vis)
	}

	groups := step.SelectElement("optionalFileGroups")
	if groups == nil {
		return page
	}
	for _, g := range ordered(groups, groups.SelectElements("group")) {
		page.Groups = append(page.Groups, p.group(g))
	}
	return page
}

func (p *parser) group(g *etree.Element) Group {
	group := Group{Name: g.SelectAttrValue("name", "")}

	kind, err := ParseGroupKind(g.SelectAttrValue("type", ""))
	if err != nil {
		p.fail("group %q: unknown group type %q", group.Name, g.SelectAttrValue("type", ""))
	}
	group.Kind = kind

	plugins := g.SelectElement("plugins")
	if plugins == nil {
		return group
	}
	for _, el := range ordered(plugins, plugins.SelectElements("plugin")) {
		group.Options = append(group.Options, p.option(el))
	}
	return group
}

func (p *parser) option(el *etree.Element) Option {
	opt := Option{Name: el.SelectAttrValue("name", "")}

	if d := el.SelectElement("description"); d != nil {
		opt.Description = strings.TrimSpace(d.Text())
	}
	if img := el.SelectElement("image"); img != nil {
		opt.Image = normalizePath(img.SelectAttrValue("path", ""))
	}
	if files := el.SelectElement("files"); files != nil {
		opt.Installs = p.files(files)
	}
	if flags := el.SelectElement("conditionFlags"); flags != nil {
		for _, f := range flags.SelectElements("flag") {
			opt.Flags = append(opt.Flags, Flag{Name: f.SelectAttrValue("name", ""), Value: f.Text()})
		}
	}

	opt.Type = TypeOptional
	td := el.SelectElement("typeDescriptor")
	if td == nil {
		return opt
	}
	if t := td.SelectElement("type"); t != nil {
		opt.Type = p.optionType(opt.Name, t)
		return opt
	}
	dt := td.SelectElement("dependencyType")
	if dt == nil {
		return opt
	}
	if def := dt.SelectElement("defaultType"); def != nil {
		opt.Type = p.optionType(opt.Name, def)
	}
	if patterns := dt.SelectElement("patterns"); patterns != nil {
		for _, pat := range patterns.SelectElements("pattern") {
			rule := TypeRule{Type: TypeOptional}
			if deps := pat.SelectElement("dependencies"); deps != nil {
				rule.When = p.composite(deps)
			}
			if t := pat.SelectElement("type"); t != nil {
				rule.Type = p.optionType(opt.Name, t)
			}
			opt.Rules = append(opt.Rules, rule)
		}
	}
	return opt
}

func (p *parser) optionType(option string, el *etree.Element) OptionType {
	t, err := ParseOptionType(el.SelectAttrValue("name", ""))
	if err != nil {
		p.fail("plugin %q: unknown type %q", option, el.SelectAttrValue("name", ""))
		return TypeOptional
	}
	return t
}

// composite reads a compositeDependency: an operator attribute (And by
// default) over flag, file and game dependencies and nested groups.
func (p *parser) composite(el *etree.Element) Predicate {
	var children []Predicate
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "flagDependency":
			children = append(children, FlagIs{
				Name:  c.SelectAttrValue("flag", ""),
				Value: c.SelectAttrValue("value", ""),
			})
		case "fileDependency":
			children = append(children, Always{
				Note: "file " + c.SelectAttrValue("file", "") + " " + c.SelectAttrValue("state", ""),
			})
		case "gameDependency", "fommDependency", "foseDependency", "fomodDependency":
			children = append(children, Always{Note: c.Tag + " " + c.SelectAttrValue("version", "")})
		case "dependencies":
			children = append(children, p.composite(c))
		default:
			p.fail("unknown dependency %q", c.Tag)
		}
	}

	if strings.EqualFold(el.SelectAttrValue("operator", "And"), "Or") {
		return Or(children)
	}
	return And(children)
}

func (p *parser) files(el *etree.Element) []Install {
	var out []Install
	for _, c := range el.ChildElements() {
		var folder bool
		switch c.Tag {
		case "file":
		case "folder":
			folder = true
		default:
			continue
		}

		in := Install{
			Source: normalizePath(c.SelectAttrValue("source", "")),
			Folder: folder,
		}
		if in.Source == "" {
			p.fail("%s without source", c.Tag)
			continue
		}

		in.Destination = normalizePath(c.SelectAttrValue("destination", ""))
		if in.Destination == "" && !folder {
			in.Destination = baseName(in.Source)
		}
		if in.Destination != "" {
			if _, ok := confined(in.Destination); !ok {
				p.fail("%s %q: destination %q is outside the mod", c.Tag, in.Source, in.Destination)
				continue
			}
		}

		if prio := c.SelectAttrValue("priority", ""); prio != "" {
			n, err := strconv.Atoi(prio)
			if err != nil {
				p.fail("%s %q: priority %q is not a number", c.Tag, in.Source, prio)
			}
			in.Priority = n
		}
		out = append(out, in)
	}
	return out
}

// ordered applies an order attribute of Ascending or Descending by name.
// Explicit, or no attribute, keeps document order.
func ordered(parent *etree.Element, items []*etree.Element) []*etree.Element {
	switch parent.SelectAttrValue("order", "") {
	case "Ascending":
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SelectAttrValue("name", "") < items[j].SelectAttrValue("name", "")
		})
	case "Descending":
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SelectAttrValue("name", "") > items[j].SelectAttrValue("name", "")
		})
	}
	return items
}

// normalizePath converts installer paths to forward slashes without
// leading or trailing separators.
func normalizePath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	return strings.Trim(p, "/")
}

func baseName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
