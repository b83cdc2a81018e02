package installer

import (
	"testing"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicates(t *testing.T) {
	flags := Flags{"a": "On", "b": "2"}

	assert.True(t, FlagIs{"a", "on"}.Eval(flags))
	assert.False(t, FlagIs{"a", "Off"}.Eval(flags))
	assert.True(t, FlagIs{"unset", ""}.Eval(flags))

	assert.True(t, And{FlagIs{"a", "On"}, FlagIs{"b", "2"}}.Eval(flags))
	assert.False(t, And{FlagIs{"a", "On"}, FlagIs{"b", "3"}}.Eval(flags))
	assert.True(t, Or{FlagIs{"a", "Off"}, FlagIs{"b", "2"}}.Eval(flags))
	assert.False(t, Or{FlagIs{"a", "Off"}}.Eval(flags))
	assert.True(t, Not{FlagIs{"a", "Off"}}.Eval(flags))
	assert.True(t, Always{}.Eval(nil))
	assert.True(t, Holds(nil, flags))

	p := Or{And{FlagIs{"a", "On"}, Not{FlagIs{"c", "x"}}}, Always{Note: "file x.esp Active"}}
	assert.Equal(t, []string{"a", "c"}, p.Refs())
	assert.Equal(t, "((a=On AND NOT c=x) OR (file x.esp Active))", p.String())
}

func TestParseGroupKind(t *testing.T) {
	k, err := ParseGroupKind("selectatmostone")
	require.NoError(t, err)
	assert.Equal(t, SelectAtMostOne, k)
	assert.Equal(t, "SelectAtMostOne", k.String())

	_, err = ParseGroupKind("SelectMany")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInstallerConfig))
}

func TestOptionsVisible(t *testing.T) {
	cfg := &Config{
		Name: "x",
		Pages: []Page{{
			Name: "p",
			Groups: []Group{
				{Name: "g1", Kind: SelectAny, Options: []Option{
					{Name: "always"},
					{Name: "when-on", Visible: FlagIs{"mode", "on"}},
				}},
				{Name: "g2", Kind: SelectAny, Options: []Option{
					{Name: "unusable-when-on", Rules: []TypeRule{{When: FlagIs{"mode", "on"}, Type: TypeNotUsable}}},
					{Name: "setter", Flags: []Flag{{"mode", "on"}}},
				}},
			},
		}},
	}

	optNames := func(opts []*Option) []string {
		var out []string
		for _, o := range opts {
			out = append(out, o.Name)
		}
		return out
	}

	assert.Equal(t, []string{"always", "unusable-when-on", "setter"}, optNames(cfg.OptionsVisible(0, Flags{})))
	assert.Equal(t, []string{"always", "when-on", "setter"}, optNames(cfg.OptionsVisible(0, Flags{"mode": "on"})))
	assert.Nil(t, cfg.OptionsVisible(3, Flags{}))
	assert.True(t, cfg.PageVisible(0, Flags{}))
	assert.False(t, cfg.PageVisible(1, Flags{}))
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Pages: []Page{
			{Name: "empty"},
			{Name: "p", Visible: FlagIs{"ghost", "1"}, Groups: []Group{
				{Name: "g", Kind: GroupKind(42), Options: []Option{
					{Name: "o", Installs: []Install{{Destination: "x"}}},
					{Name: "o"},
				}},
				{Name: "none", Kind: SelectAny},
			}},
		},
		Conditional: []ConditionalInstall{{When: FlagIs{"phantom", "1"}}},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInstallerConfig))

	problems, ok := errors.GetErrorDetails(err)["problems"].([]string)
	require.True(t, ok)
	assert.Len(t, problems, 8)
	for _, want := range []string{"no name", "page 1 (empty) has no groups", "ghost", "unknown kind 42",
		"listed twice", "without source", `group "none" has no options`, "phantom"} {
		assert.Contains(t, err.Error(), want)
	}
}
