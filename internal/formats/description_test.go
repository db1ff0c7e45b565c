package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty stays empty",
			in:   "",
			want: "",
		},
		{
			name: "escaped line breaks become real breaks",
			in:   `Mesa de pool profesional.\r\nIncluye accesorios.`,
			want: "Mesa de pool profesional.<br>Incluye accesorios.",
		},
		{
			name: "runs of escaped breaks collapse to one",
			in:   `Linea uno\r\n\r\n\r\nLinea dos`,
			want: "Linea uno<br>Linea dos",
		},
		{
			name: "empty paragraphs dropped",
			in:   "<p>Texto</p><p> </p><p>&nbsp;</p><p>Mas texto</p>",
			want: "<p>Texto</p><p>Mas texto</p>",
		},
		{
			name: "three or more br collapse to two",
			in:   "Uno<br><br><br><br>Dos",
			want: "Uno<br><br>Dos",
		},
		{
			name: "self closing br runs collapse too",
			in:   "Uno<br/> <br /> <br/>Dos",
			want: "Uno<br><br>Dos",
		},
		{
			name: "double br preserved",
			in:   "Uno<br><br>Dos",
			want: "Uno<br><br>Dos",
		},
		{
			name: "spaces collapse and edges trimmed",
			in:   "  Taco   profesional  ",
			want: "Taco profesional",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.in))
		})
	}
}
