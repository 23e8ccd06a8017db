// Package animation turns rank transitions into timing directives for the
// presentation layer.
package animation

import (
	"strings"
	"time"

	"github.com/verte-zerg/tuirace/internal/model"
	"github.com/verte-zerg/tuirace/internal/ranking"
)

// Kind selects the animation a bar plays this frame.
type Kind int

const (
	KindNone Kind = iota
	KindEnter
	KindFlip
)

func (k Kind) String() string {
	switch k {
	case KindEnter:
		return "enter"
	case KindFlip:
		return "flip"
	default:
		return "none"
	}
}

// Axis is the flip rotation axis.
type Axis int

const (
	AxisNone Axis = iota
	AxisX
	AxisY
)

// Target is the element that flips.
type Target int

const (
	TargetNone Target = iota
	TargetImage
	TargetBorder
)

// Easing names the timing curve.
type Easing int

const (
	EasingNone Easing = iota
	EasingLinear
	EasingSpring
)

func (e Easing) String() string {
	switch e {
	case EasingLinear:
		return "linear"
	case EasingSpring:
		return "spring"
	default:
		return "none"
	}
}

// Directive is the per-entity animation intent for one frame.
type Directive struct {
	Kind             Kind
	PositionDuration time.Duration
	WidthDuration    time.Duration
	FlipAxis         Axis
	FlipTarget       Target
	Easing           Easing
}

// Translate builds the directive for one transition. valueChanged reports
// whether the entity's value differs from the previous frame.
func Translate(tr ranking.Transition, valueChanged bool, cfg model.AnimationSettings) Directive {
	if cfg.BarJump == model.BarJumpInstant {
		return Directive{}
	}

	var d Directive
	switch tr.Kind {
	case ranking.Enter:
		d.Kind = KindEnter
		d.PositionDuration = seconds(cfg.EntryDuration)
		d.Easing = EasingSpring
	case ranking.Move:
		d.Kind = KindFlip
		d.PositionDuration = seconds(cfg.JumpDuration)
		d.Easing = EasingLinear
		d.FlipAxis, d.FlipTarget = flipOf(cfg.FlipStyle)
	case ranking.Stable:
		d.PositionDuration = seconds(cfg.JumpDuration)
		d.Easing = EasingSpring
	case ranking.Exit:
		return d
	}
	if valueChanged {
		d.WidthDuration = seconds(cfg.GrowthDuration)
	}
	return d
}

// TranslateAll translates every transition, keyed by entity. changed holds
// the keys whose value moved since the previous frame.
func TranslateAll(transitions []ranking.Transition, changed map[string]bool, cfg model.AnimationSettings) map[string]Directive {
	out := make(map[string]Directive, len(transitions))
	for _, tr := range transitions {
		out[tr.Key] = Translate(tr, changed[tr.Key], cfg)
	}
	return out
}

func flipOf(style model.FlipStyle) (Axis, Target) {
	if style == model.FlipNone {
		return AxisNone, TargetNone
	}
	s := string(style)
	axis := AxisY
	if strings.HasSuffix(s, "Vertical") {
		axis = AxisX
	}
	target := TargetBorder
	if strings.HasPrefix(s, "image") {
		target = TargetImage
	}
	return axis, target
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
