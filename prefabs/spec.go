package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// LevelSpec is one hazard scene. Hazards and links may also be generated by
// the level's tengo script, which runs after the YAML is decoded.
type LevelSpec struct {
	Name    string       `yaml:"name"`
	Script  string       `yaml:"script"`
	Player  PlayerSpec   `yaml:"player"`
	Solids  []SolidSpec  `yaml:"solids"`
	Hazards []HazardSpec `yaml:"hazards"`
	Links   []LinkSpec   `yaml:"links"`
}

type PlayerSpec struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	MoveSpeed float64 `yaml:"move_speed"`
	JumpSpeed float64 `yaml:"jump_speed"`
}

type SolidSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type Vec2Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type GeometrySpec struct {
	Anchor        Vec2Spec `yaml:"anchor"`
	Orientation   string   `yaml:"orientation"`
	HiddenOffset  float64  `yaml:"hidden_offset"`
	VisibleOffset float64  `yaml:"visible_offset"`
	Size          Vec2Spec `yaml:"size"`
}

type RetractSpec struct {
	Extend     float64 `yaml:"extend"`
	Retract    float64 `yaml:"retract"`
	CycleDelay float64 `yaml:"cycle_delay"`
}

type VibrateSpec struct {
	FadeIn    float64 `yaml:"fade_in"`
	Hold      float64 `yaml:"hold"`
	FadeOut   float64 `yaml:"fade_out"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

type DropSpec struct {
	Duration      float64 `yaml:"duration"`
	Distance      float64 `yaml:"distance"`
	ArmDelay      float64 `yaml:"arm_delay"`
	RaiseDuration float64 `yaml:"raise_duration"`
}

type ProximitySpec struct {
	Distance      float64 `yaml:"distance"`
	Direction     string  `yaml:"direction"`
	MinHold       float64 `yaml:"min_hold"`
	MaxHold       float64 `yaml:"max_hold"`
	JumpToDisable bool    `yaml:"jump_to_disable"`
	JumpMargin    float64 `yaml:"jump_margin"`
}

type HazardSpec struct {
	Name         string         `yaml:"name"`
	Kind         string         `yaml:"kind"`
	Geometry     GeometrySpec   `yaml:"geometry"`
	Retract      *RetractSpec   `yaml:"retract"`
	Vibrate      *VibrateSpec   `yaml:"vibrate"`
	Drop         *DropSpec      `yaml:"drop"`
	Proximity    *ProximitySpec `yaml:"proximity"`
	ArmThreshold *float64       `yaml:"arm_threshold"`
	RevealChain  bool           `yaml:"reveal_chain"`
	Decoy        bool           `yaml:"decoy"`
	Color        *YAMLColor     `yaml:"color"`
	// StartDelay, when set, starts the hazard as soon as the level is built.
	StartDelay *float64 `yaml:"start_delay"`
}

type LinkSpec struct {
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
	Delay float64 `yaml:"delay"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// DecodeSpec converts loosely typed data, such as a script map, into a spec
// struct using the same yaml tags as the level files.
func DecodeSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// LoadLevel reads a level file and runs its script, if any.
func LoadLevel(filename string) (*LevelSpec, error) {
	spec, err := LoadSpec[LevelSpec](filename)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(spec.Script) != "" {
		if err := RunLevelScript(&spec); err != nil {
			return nil, fmt.Errorf("prefabs: script %s for %s: %w", spec.Script, filename, err)
		}
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(cleanLevelPath(filename), ".yaml")
	}
	return &spec, nil
}

// YAMLColor accepts "#rrggbb", "#rrggbbaa" or an SVG color name.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(strings.TrimSpace(value.Value))]; ok {
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// MarshalYAML writes the color back in "#rrggbbaa" form.
func (c YAMLColor) MarshalYAML() (any, error) {
	if c.Color == nil {
		return nil, nil
	}
	n := color.NRGBAModel.Convert(c.Color).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
}
