package filtergraph

import "testing"

func TestEscapeText(t *testing.T) {
	got := EscapeText(`it's 3:00`)
	want := `it\'s 3\:00`
	if got != want {
		t.Errorf("EscapeText() = %q, want %q", got, want)
	}
}

func TestScaleSerialize(t *testing.T) {
	s := Scale{Width: 1080, Height: 1920}
	want := "scale=1080:1920:force_original_aspect_ratio=increase"
	if got := s.Serialize(); got != want {
		t.Errorf("Scale.Serialize() = %q, want %q", got, want)
	}
}

func TestGraphSerialize(t *testing.T) {
	g := Graph{
		Video: Chain{Scale{1080, 1920}, Crop{1080, 1920}},
		Audio: Chain{Loudnorm{"-14", "-1", "11"}, AFormat{48000}},
	}
	got := g.Serialize()
	want := "[0:v]scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920[v];" +
		"[0:a]loudnorm=I=-14:TP=-1:LRA=11,aformat=sample_rates=48000[a]"
	if got != want {
		t.Errorf("Graph.Serialize() =\n%q\nwant\n%q", got, want)
	}
}

func TestDrawTextEscapesEmbeddedQuote(t *testing.T) {
	d := DrawText{Text: "don't stop", Size: 48, Color: "white", X: "(w-text_w)/2", Y: "100"}
	got := d.Serialize()
	want := `drawtext=text='don\'t stop':fontsize=48:fontcolor=white:x=(w-text_w)/2:y=100`
	if got != want {
		t.Errorf("DrawText.Serialize() = %q, want %q", got, want)
	}
}

func TestDrawTextEnableWindow(t *testing.T) {
	start, end := 1.5, 2.25
	d := DrawText{Text: "hey", Size: 48, Color: "yellow", X: "0", Y: "0", EnableStart: &start, EnableEnd: &end}
	got := d.Serialize()
	want := "drawtext=text='hey':fontsize=48:fontcolor=yellow:x=0:y=0:enable='between(t,1.500,2.250)'"
	if got != want {
		t.Errorf("DrawText.Serialize() = %q, want %q", got, want)
	}
}
