package nn

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// ParameterTable renders a tabular summary of a module's trainable
// parameters: name, shape and element count, with a total row.
func ParameterTable[B tensor.Backend](m Module[B]) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "PARAMETER\tSHAPE\tCOUNT")
	total := 0
	for _, p := range m.Parameters() {
		count := p.Tensor().NumElements()
		total += count
		fmt.Fprintf(w, "%s\t%v\t%d\n", p.Name(), p.Tensor().Shape(), count)
	}
	fmt.Fprintf(w, "TOTAL\t\t%d\n", total)

	w.Flush()
	return sb.String()
}
