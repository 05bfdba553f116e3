package exports

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const (
	EncodingUTF8 = "utf-8"
	EncodingSJIS = "sjis"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV: utf-8 は Excel で開けるよう BOM 付き、sjis は Shift_JIS に変換して書く。
// Shift_JIS に無い文字（絵文字など）は置換文字になる
func WriteCSV(w io.Writer, header []string, recs []Record, charset string) error {
	var out io.Writer = w
	var closer io.Closer

	switch charset {
	case "", EncodingUTF8:
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	case EncodingSJIS:
		tw := transform.NewWriter(w, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
		out, closer = tw, tw
	default:
		return fmt.Errorf("unsupported csv encoding: %q", charset)
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(r.Cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}

func csvContentType(charset string) string {
	if charset == EncodingSJIS {
		return "text/csv; charset=Shift_JIS"
	}
	return "text/csv; charset=utf-8"
}
