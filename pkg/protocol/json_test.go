package protocol

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestJSONMarshalMove(t *testing.T) {
	data, err := JSON.Marshal(NewMove(0.1/2.4, 0))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["type"] != "move" {
		t.Fatalf("type = %v, want move", got["type"])
	}
	if pos := got["pos"].(float64); math.Abs(pos-0.041666) > 1e-4 {
		t.Fatalf("pos = %v, want ~0.0417", pos)
	}
	if rot := got["rot"].(float64); rot != 0 {
		t.Fatalf("rot = %v, want 0", rot)
	}
}

func TestJSONMarshalSelection(t *testing.T) {
	data, err := JSON.Marshal(NewSelection(2))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"type":"selection","selection":2}` {
		t.Fatalf("unexpected payload %s", data)
	}
}

func TestJSONDecodeState(t *testing.T) {
	raw := `{"type":"pos","redpos":[0.5,0.5,0.5,0.5],"bluepos":[0,0.25,0.75,1],
		"redrot":[0,90,180,270],"bluerot":[0,0,0,0],"ballpos":[0.1,0.9,0]}`

	msg, err := JSON.Unmarshal([]byte(raw))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Kind != KindState || msg.State == nil {
		t.Fatalf("kind = %v, want state", msg.Kind)
	}
	if msg.State.BluePos[3] != 1 || msg.State.RedRot[2] != 180 {
		t.Fatalf("unexpected state %+v", msg.State)
	}
	if msg.State.Ball != [2]float64{0.1, 0.9} {
		t.Fatalf("ball = %v", msg.State.Ball)
	}
}

func TestJSONDecodeStateRejectsNull(t *testing.T) {
	tests := map[string]string{
		"redpos":  `{"type":"pos","redpos":[0.5,null,0.5,0.5],"bluepos":[0.5,0.5,0.5,0.5],"redrot":[0,0,0,0],"bluerot":[0,0,0,0],"ballpos":[0.5,0.5]}`,
		"bluerot": `{"type":"pos","redpos":[0.5,0.5,0.5,0.5],"bluepos":[0.5,0.5,0.5,0.5],"redrot":[0,0,0,0],"bluerot":[0,0,null,0],"ballpos":[0.5,0.5]}`,
		"ballpos": `{"type":"pos","redpos":[0.5,0.5,0.5,0.5],"bluepos":[0.5,0.5,0.5,0.5],"redrot":[0,0,0,0],"bluerot":[0,0,0,0],"ballpos":[0.5,null]}`,
		"whole":   `{"type":"pos","redpos":null,"bluepos":[0.5,0.5,0.5,0.5],"redrot":[0,0,0,0],"bluerot":[0,0,0,0],"ballpos":[0.5,0.5]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			msg, err := JSON.Unmarshal([]byte(raw))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, msg = %+v, want ErrMalformed", err, msg)
			}
		})
	}
}

func TestJSONDecodeUnknownTypeIsIgnored(t *testing.T) {
	msg, err := JSON.Unmarshal([]byte(`{"type":"params","spacing":"x"}`))
	if err != nil {
		t.Fatalf("unknown type should not error: %v", err)
	}
	if msg.Kind != KindUnknown || msg.Type != "params" {
		t.Fatalf("got %+v", msg)
	}
}

func TestJSONDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"type":`},
		{"no type", `{"redpos":[0.5,0.5,0.5,0.5]}`},
		{"missing bluepos", `{"type":"pos","redpos":[0,0,0,0],"redrot":[0,0,0,0],"bluerot":[0,0,0,0],"ballpos":[0,0]}`},
		{"short redpos", `{"type":"pos","redpos":[0,0,0],"bluepos":[0,0,0,0],"redrot":[0,0,0,0],"bluerot":[0,0,0,0],"ballpos":[0,0]}`},
		{"non numeric", `{"type":"pos","redpos":["a",0,0,0],"bluepos":[0,0,0,0],"redrot":[0,0,0,0],"bluerot":[0,0,0,0],"ballpos":[0,0]}`},
		{"short ball", `{"type":"pos","redpos":[0,0,0,0],"bluepos":[0,0,0,0],"redrot":[0,0,0,0],"bluerot":[0,0,0,0],"ballpos":[0]}`},
		{"move without rot", `{"type":"move","pos":0.1}`},
		{"fractional selection", `{"type":"selection","selection":1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JSON.Unmarshal([]byte(tt.raw))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestJSONMarshalRejectsNaN(t *testing.T) {
	if _, err := JSON.Marshal(NewMove(math.NaN(), 0)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestJSONStateRoundTrip(t *testing.T) {
	in := RestState()
	in.SetRod(0, 2, 0.8, 45)

	data, err := JSON.Marshal(NewState(in))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	msg, err := JSON.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if *msg.State != in {
		t.Fatalf("got %+v, want %+v", *msg.State, in)
	}
}
