package scene

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownShape = errors.New("unknown shape type")
	ErrEmptyPayload = errors.New("empty shape payload")
)

type ShapeType string

const (
	TypeRectangle ShapeType = "rect"
	TypeCircle    ShapeType = "circle"
	TypePencil    ShapeType = "pencil"
	TypeLine      ShapeType = "line"
	TypeArrow     ShapeType = "arrow"
	TypeText      ShapeType = "text"
)

// Shape is one drawable primitive. Values are never mutated after they are
// appended to a scene.
type Shape interface {
	Type() ShapeType
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Circle struct {
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Radius  float64 `json:"radius"`
}

// Polyline is a freehand stroke.
type Polyline struct {
	Points []Point `json:"points"`
}

type LineSegment struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
}

// Arrow is a line segment with a head at its end point.
type Arrow struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
}

type Text struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

func (Rectangle) Type() ShapeType   { return TypeRectangle }
func (Circle) Type() ShapeType      { return TypeCircle }
func (Polyline) Type() ShapeType    { return TypePencil }
func (LineSegment) Type() ShapeType { return TypeLine }
func (Arrow) Type() ShapeType       { return TypeArrow }
func (Text) Type() ShapeType        { return TypeText }

// envelope is the payload carried in a chat frame: {"shape": {...}}.
type envelope struct {
	Shape json.RawMessage `json:"shape"`
}

// pencilFields also accepts the two-point stroke form older clients send.
type pencilFields struct {
	Points []Point  `json:"points"`
	StartX *float64 `json:"startX"`
	StartY *float64 `json:"startY"`
	EndX   *float64 `json:"endX"`
	EndY   *float64 `json:"endY"`
}

// Decode parses a published payload into a Shape. Both the wrapped
// {"shape": {...}} form and a bare shape object are accepted.
func Decode(payload string) (Shape, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	raw := json.RawMessage(payload)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode shape payload: %w", err)
	}
	if len(env.Shape) > 0 && string(env.Shape) != "null" {
		raw = env.Shape
	}

	var head struct {
		Type ShapeType `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode shape type: %w", err)
	}

	switch head.Type {
	case TypeRectangle:
		return decodeAs[Rectangle](raw)
	case TypeCircle:
		return decodeAs[Circle](raw)
	case TypeLine:
		return decodeAs[LineSegment](raw)
	case TypeArrow:
		return decodeAs[Arrow](raw)
	case TypeText:
		return decodeAs[Text](raw)
	case TypePencil:
		var f pencilFields
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("decode pencil: %w", err)
		}
		if len(f.Points) == 0 && f.StartX != nil && f.StartY != nil && f.EndX != nil && f.EndY != nil {
			f.Points = []Point{{X: *f.StartX, Y: *f.StartY}, {X: *f.EndX, Y: *f.EndY}}
		}
		return Polyline{Points: f.Points}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, head.Type)
	}
}

func decodeAs[T Shape](raw json.RawMessage) (Shape, error) {
	var s T
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Type(), err)
	}
	return s, nil
}

// Encode produces the wrapped payload form understood by Decode.
func Encode(s Shape) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return "", err
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", err
	}
	fields["type"] = s.Type()

	out, err := json.Marshal(map[string]any{"shape": fields})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
