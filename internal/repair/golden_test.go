package repair

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/xliff-fixer/internal/types"
)

func TestRepair_GoldenDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.RepairResult
	}{
		{
			name: "exported catalogue with every corruption",
			input: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
				"<xliff version=\"1.2\">\n" +
				"  <file source-language=\"en\" target-language=\"de\">\n" +
				"    <body>\n" +
				"      <trans-unit id=\"terms\">\n" +
				"        <source>Terms & Conditions\x0B</source>\n" +
				"        <target>AGB &amp; Hinweise</target>\n" +
				"      </trans-unit>\n" +
				"      <trans-unit id=\"limit\">\n" +
				"        <source>Age < 18</source>\n" +
				"        <target>Alter &#60; 18</target>\n" +
				"      </trans-unit>\n" +
				"    </body>\n" +
				"  </file>\n" +
				"</xliff",
			want: types.RepairResult{
				FixedContent: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
					"<xliff version=\"1.2\">\n" +
					"  <file source-language=\"en\" target-language=\"de\">\n" +
					"    <body>\n" +
					"      <trans-unit id=\"terms\">\n" +
					"        <source>Terms &amp; Conditions</source>\n" +
					"        <target>AGB &amp; Hinweise</target>\n" +
					"      </trans-unit>\n" +
					"      <trans-unit id=\"limit\">\n" +
					"        <source>Age &lt; 18</source>\n" +
					"        <target>Alter &#60; 18</target>\n" +
					"      </trans-unit>\n" +
					"    </body>\n" +
					"  </file>\n" +
					"</xliff>",
				IsValid:     true,
				Errors:      []string{},
				WasModified: true,
				Strategy:    types.StrategyHeuristic,
			},
		},
		{
			name:  "already well formed",
			input: "<xliff version=\"2.0\"><file id=\"f\"><unit id=\"u\"><segment><source>Hi</source></segment></unit></file></xliff>",
			want: types.RepairResult{
				FixedContent: "<xliff version=\"2.0\"><file id=\"f\"><unit id=\"u\"><segment><source>Hi</source></segment></unit></file></xliff>",
				IsValid:      true,
				Errors:       []string{},
				WasModified:  false,
				Strategy:     types.StrategyHeuristic,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Repair() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
