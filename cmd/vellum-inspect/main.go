// Command vellum-inspect prints the schema, metadata and batch layout of a
// vellum IPC file, and optionally the first rows of its data.
//
// Usage:
//
//	vellum-inspect [-head N] [-columns a,b,c] file.vellum
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/ipc"
)

func main() {
	head := flag.Int("head", 0, "print the first N rows of data")
	columns := flag.String("columns", "", "comma-separated list of columns to print")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-head N] [-columns a,b,c] <file>\n", os.Args[0])
		os.Exit(2)
	}
	path := flag.Arg(0)

	if err := inspect(path, *head, *columns); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

func inspect(path string, head int, columns string) error {
	f, err := ipc.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	schema, err := f.Schema()
	if err != nil {
		return err
	}
	rows, err := f.RowCount()
	if err != nil {
		return err
	}
	n, err := f.NumBatches()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d rows in %d batches\n\n", path, rows, n)

	st := tablewriter.NewWriter(os.Stdout)
	st.Header("column", "type", "nullable")
	for _, field := range schema.Fields {
		st.Append([]string{field.Name, field.Type.String(), strconv.FormatBool(field.Nullable)})
	}
	if err := st.Render(); err != nil {
		return err
	}

	meta, err := f.Metadata()
	if err != nil {
		return err
	}
	if len(meta) > 0 {
		fmt.Println()
		mt := tablewriter.NewWriter(os.Stdout)
		mt.Header("metadata key", "value")
		for k, v := range meta {
			mt.Append([]string{k, v})
		}
		if err := mt.Render(); err != nil {
			return err
		}
	}

	fmt.Println()
	bt := tablewriter.NewWriter(os.Stdout)
	bt.Header("batch", "rows", "compression", "body bytes")
	for i := 0; i < n; i++ {
		info, err := f.Info(i)
		if err != nil {
			return err
		}
		bt.Append([]string{
			strconv.Itoa(i),
			strconv.FormatInt(info.Rows, 10),
			info.Compression.String(),
			strconv.FormatInt(info.BodyLength, 10),
		})
	}
	if err := bt.Render(); err != nil {
		return err
	}

	if head > 0 {
		return printHead(path, head, columns)
	}
	return nil
}

func printHead(path string, head int, columns string) error {
	opts := ipc.ReadOptions{NRows: int64(head)}
	if columns != "" {
		opts.Columns = strings.Split(columns, ",")
	}
	table, err := ipc.ReadFile(path, opts)
	if err != nil {
		return err
	}
	defer table.Close()

	fmt.Println()
	dt := tablewriter.NewWriter(os.Stdout)
	names := make([]any, len(table.Schema().Fields))
	for i, field := range table.Schema().Fields {
		names[i] = field.Name
	}
	dt.Header(names...)
	for b := 0; b < table.NumBatches(); b++ {
		batch := table.Batch(b)
		for i := 0; i < batch.Height(); i++ {
			row := make([]string, batch.NumCols())
			for c := range row {
				row[c] = formatValue(batch.Column(c), i)
			}
			dt.Append(row)
		}
	}
	return dt.Render()
}

// formatValue renders row i of an array for display.
func formatValue(a vellum.Array, i int) string {
	if !a.IsValid(i) {
		return "null"
	}
	switch x := a.(type) {
	case *vellum.BooleanArray:
		return strconv.FormatBool(x.Value(i))
	case *vellum.PrimitiveArray:
		return formatPrimitive(x, i)
	case *vellum.BinaryArray:
		if x.DataType().Kind == vellum.Utf8 {
			return x.String(i)
		}
		return fmt.Sprintf("%x", x.Value(i))
	case *vellum.ViewArray:
		if x.DataType().Kind == vellum.Utf8View {
			return x.String(i)
		}
		return fmt.Sprintf("%x", x.Value(i))
	case *vellum.DictionaryArray:
		return formatValue(x.Dictionary(), x.Index(i))
	case *vellum.FixedSizeListArray:
		size := x.Size()
		parts := make([]string, size)
		for j := 0; j < size; j++ {
			parts[j] = formatValue(x.Elems(), i*size+j)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *vellum.ListArray:
		offsets := x.Offsets()
		parts := make([]string, 0, offsets[i+1]-offsets[i])
		for j := offsets[i]; j < offsets[i+1]; j++ {
			parts = append(parts, formatValue(x.Elems(), int(j)))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *vellum.StructArray:
		parts := make([]string, x.NumFields())
		for j := range parts {
			name := x.DataType().Fields[j].Name
			parts[j] = name + ": " + formatValue(x.Field(j), i)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("<%s>", a.DataType())
	}
}

func formatPrimitive(a *vellum.PrimitiveArray, i int) string {
	switch a.DataType().Kind {
	case vellum.Int8:
		return strconv.FormatInt(int64(vellum.PrimitiveValues[int8](a)[i]), 10)
	case vellum.Int16:
		return strconv.FormatInt(int64(vellum.PrimitiveValues[int16](a)[i]), 10)
	case vellum.Int32:
		return strconv.FormatInt(int64(vellum.PrimitiveValues[int32](a)[i]), 10)
	case vellum.Int64:
		return strconv.FormatInt(vellum.PrimitiveValues[int64](a)[i], 10)
	case vellum.Uint8:
		return strconv.FormatUint(uint64(vellum.PrimitiveValues[uint8](a)[i]), 10)
	case vellum.Uint16:
		return strconv.FormatUint(uint64(vellum.PrimitiveValues[uint16](a)[i]), 10)
	case vellum.Uint32:
		return strconv.FormatUint(uint64(vellum.PrimitiveValues[uint32](a)[i]), 10)
	case vellum.Uint64:
		return strconv.FormatUint(vellum.PrimitiveValues[uint64](a)[i], 10)
	case vellum.Float32:
		return strconv.FormatFloat(float64(vellum.PrimitiveValues[float32](a)[i]), 'g', -1, 32)
	case vellum.Float64:
		return strconv.FormatFloat(vellum.PrimitiveValues[float64](a)[i], 'g', -1, 64)
	default:
		return fmt.Sprintf("%x", a.FixedValue(i))
	}
}
