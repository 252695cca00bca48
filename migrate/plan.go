package migrate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the stylesheet migrated when no file is given.
const DefaultFile = "src/app/features/books/available-books/available-books.scss"

// BackupSuffix is appended to the target path to name its pre-edit copy.
const BackupSuffix = ".backup"

// Plan describes one migration: which file to edit and which passes to run.
type Plan struct {
	File       string        `mapstructure:"file" yaml:"file"`
	FromBackup bool          `mapstructure:"from_backup" yaml:"from_backup"`
	Backup     bool          `mapstructure:"backup" yaml:"backup"`
	Strict     bool          `mapstructure:"strict" yaml:"strict"`
	Opacity    OpacityConfig `mapstructure:"opacity" yaml:"opacity"`
	Reorder    []ReorderRule `mapstructure:"reorder" yaml:"reorder"`
	Replace    []Replacement `mapstructure:"replace" yaml:"replace,omitempty"`
}

// OpacityConfig configures the OpacityRewriter pass.
type OpacityConfig struct {
	Disabled  bool   `mapstructure:"disabled" yaml:"disabled,omitempty"`
	Preset    string `mapstructure:"preset" yaml:"preset,omitempty"`
	Source    string `mapstructure:"source" yaml:"source"`
	Target    string `mapstructure:"target" yaml:"target"`
	Param     string `mapstructure:"param" yaml:"param"`
	EnsureUse string `mapstructure:"ensure_use" yaml:"ensure_use,omitempty"`
}

// Presets for OpacityConfig. PresetDefault emits color-mutate(c, opacity: a);
// PresetSass emits Sass's own color.change(c, $alpha: a) and loads sass:color.
const (
	PresetDefault = "default"
	PresetSass    = "sass"
)

// ApplyPreset overwrites the target settings with a named preset.
func (c *OpacityConfig) ApplyPreset(name string) error {
	switch name {
	case "", PresetDefault:
		c.Target, c.Param, c.EnsureUse = "color-mutate", "opacity", ""
	case PresetSass:
		c.Target, c.Param, c.EnsureUse = "color.change", "$alpha", "sass:color"
	default:
		return fmt.Errorf("unknown opacity preset %q (want %q or %q)", name, PresetDefault, PresetSass)
	}
	c.Preset = name
	return nil
}

// DefaultPlan returns the built-in plan for the library frontend's
// available-books stylesheet.
func DefaultPlan() *Plan {
	return &Plan{
		File:   DefaultFile,
		Backup: true,
		Opacity: OpacityConfig{
			Preset: PresetDefault,
			Source: "rgba",
			Target: "color-mutate",
			Param:  "opacity",
		},
		Reorder: []ReorderRule{
			{Selector: ".available-books-container", Order: []Bag{BagDeclarations, BagIncludes}},
			{Selector: ".book-card", Order: []Bag{BagDeclarations, BagIncludes, BagNested}},
			{Selector: ".borrow-button", Order: []Bag{BagIncludes, BagDeclarations}},
			{Selector: ".details-button", Order: []Bag{BagIncludes, BagDeclarations}},
		},
	}
}

func setPlanDefaults(v *viper.Viper) {
	d := DefaultPlan()
	v.SetDefault("file", d.File)
	v.SetDefault("backup", d.Backup)
	v.SetDefault("opacity.source", d.Opacity.Source)
	v.SetDefault("opacity.target", d.Opacity.Target)
	v.SetDefault("opacity.param", d.Opacity.Param)
}

// LoadPlan reads a plan file (YAML, JSON or TOML, by extension). Keys the file
// omits keep their DefaultPlan values; text_file paths are resolved relative
// to the plan file and loaded into Text without their final newline.
func LoadPlan(path string) (*Plan, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setPlanDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}

	var p Plan
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("decoding plan %s: %w", path, err)
	}
	if !v.IsSet("reorder") {
		p.Reorder = DefaultPlan().Reorder
	}
	if p.Opacity.Preset != "" {
		if err := p.Opacity.ApplyPreset(p.Opacity.Preset); err != nil {
			return nil, err
		}
	}

	dir := filepath.Dir(path)
	for i := range p.Replace {
		rep := &p.Replace[i]
		if rep.TextFile == "" {
			continue
		}
		textPath := rep.TextFile
		if !filepath.IsAbs(textPath) {
			textPath = filepath.Join(dir, textPath)
		}
		data, err := os.ReadFile(textPath)
		if err != nil {
			return nil, fmt.Errorf("replacement %q: reading text file: %w", rep.Name, err)
		}
		rep.Text = strings.TrimSuffix(string(data), "\n")
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return &p, nil
}

// Validate checks the plan for settings that would make a pass misbehave.
func (p *Plan) Validate() error {
	if p.File == "" {
		return fmt.Errorf("file is required")
	}
	if !p.Opacity.Disabled {
		if p.Opacity.Source == "" || p.Opacity.Target == "" || p.Opacity.Param == "" {
			return fmt.Errorf("opacity: source, target and param are required")
		}
	}
	for i, rule := range p.Reorder {
		if rule.Selector == "" {
			return fmt.Errorf("reorder[%d]: selector is required", i)
		}
		seen := make(map[Bag]bool)
		for _, b := range rule.Order {
			if !containsBag(canonicalOrder, b) {
				return fmt.Errorf("reorder[%d] %s: unknown bag %q", i, rule.Selector, b)
			}
			if seen[b] {
				return fmt.Errorf("reorder[%d] %s: bag %q listed twice", i, rule.Selector, b)
			}
			seen[b] = true
		}
	}
	for i, rep := range p.Replace {
		if rep.Start == "" {
			return fmt.Errorf("replace[%d] %s: start is required", i, rep.Name)
		}
		if !rep.endsAtRule() {
			if _, err := regexp.Compile(rep.End); err != nil {
				return fmt.Errorf("replace[%d] %s: invalid end pattern: %w", i, rep.Name, err)
			}
		}
	}
	return nil
}

// Passes returns the plan's passes in execution order: rewrite, reorder,
// replace. Passes with nothing to do are omitted.
func (p *Plan) Passes() []Pass {
	var passes []Pass
	if !p.Opacity.Disabled {
		passes = append(passes, &OpacityRewriter{
			Source:    p.Opacity.Source,
			Target:    p.Opacity.Target,
			Param:     p.Opacity.Param,
			EnsureUse: p.Opacity.EnsureUse,
		})
	}
	if len(p.Reorder) > 0 {
		passes = append(passes, &BlockReorderer{Rules: p.Reorder})
	}
	if len(p.Replace) > 0 {
		passes = append(passes, &BlockReplacer{Replacements: p.Replace})
	}
	return passes
}

// BackupPath returns the path of the file's pre-edit copy.
func (p *Plan) BackupPath() string {
	return p.File + BackupSuffix
}

// WriteYAML writes the plan as YAML.
func (p *Plan) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return enc.Close()
}
