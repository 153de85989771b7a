package vcb

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/sig-0/vcbrates/normalize"
)

// feedTimeLayout is the rate board timestamp format, e.g. "10/19/2026 7:30:00 AM"
const feedTimeLayout = "1/2/2006 3:04:05 PM"

var (
	errDecodeToken = errors.New("decoding of the markup failed")
	errNoRows      = errors.New("no rate rows found")
)

// Feed is a decoded rate board
type Feed struct {
	AsOf    time.Time // zero when the board carries no timestamp
	Source  string
	Records []normalize.RawRecord
}

// exrateList is the current rate board:
//
//	<ExrateList>
//	  <DateTime>10/19/2026 7:30:00 AM</DateTime>
//	  <Exrate CurrencyCode="USD" CurrencyName="US DOLLAR" Buy="26,090.00" Transfer="26,120.00" Sell="26,380.00"/>
//	  <Source>Joint Stock Commercial Bank for Foreign Trade of Vietnam - Vietcombank</Source>
//	</ExrateList>
type exrateList struct {
	XMLName  xml.Name `xml:"ExrateList"`
	DateTime string   `xml:"DateTime"`
	Source   string   `xml:"Source"`
	Rates    []exrate `xml:"Exrate"`
}

type exrate struct {
	Code     normalize.Value `xml:"CurrencyCode,attr"`
	Name     normalize.Value `xml:"CurrencyName,attr"`
	Buy      normalize.Value `xml:"Buy,attr"`
	Transfer normalize.Value `xml:"Transfer,attr"`
	Sell     normalize.Value `xml:"Sell,attr"`
}

// decodeFeed decodes the rate board, picking the decoder by the root element.
// contentType is the upstream Content-Type header, if any
func decodeFeed(b []byte, contentType string) (*Feed, error) {
	root, err := rootElement(b)
	if err != nil {
		return nil, err
	}

	if root == "ExrateList" {
		return decodeExrateList(b)
	}

	return decodeRowSet(b, contentType)
}

// rootElement returns the local name of the first element in the document
func rootElement(b []byte) (string, error) {
	decoder := newXMLDecoder(b)

	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", errNoRows
			}

			return "", wrapDecodeErr(err)
		}

		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

// decodeExrateList decodes the attribute-based rate board
func decodeExrateList(b []byte) (*Feed, error) {
	var list exrateList

	if err := newXMLDecoder(b).Decode(&list); err != nil {
		return nil, wrapDecodeErr(err)
	}

	if len(list.Rates) == 0 {
		return nil, errNoRows
	}

	feed := &Feed{
		Source:  strings.TrimSpace(list.Source),
		Records: make([]normalize.RawRecord, 0, len(list.Rates)),
	}

	if asOf, err := parseFeedTime(list.DateTime); err == nil {
		feed.AsOf = asOf
	}

	for _, r := range list.Rates {
		feed.Records = append(feed.Records, normalize.RawRecord{
			Code:     r.Code,
			Name:     r.Name,
			Buy:      r.Buy,
			Transfer: r.Transfer,
			Sell:     r.Sell,
		})
	}

	return feed, nil
}

// decodeRowSet decodes the legacy row set, where every quote is an
// <SROW Currency=".." Buy=".." Transfer=".." Sell=".."/> element.
// The rows carry no currency name, so the code stands in for it
func decodeRowSet(b []byte, contentType string) (*Feed, error) {
	enc, _, _ := charset.DetermineEncoding(b, contentType)

	doc, err := goquery.NewDocumentFromReader(enc.NewDecoder().Reader(bytes.NewReader(b)))
	if err != nil {
		return nil, fmt.Errorf("unable to parse row set: %w", err)
	}

	// the HTML parser lowercases element and attribute names
	rows := doc.Find("srow")
	if rows.Length() == 0 {
		return nil, errNoRows
	}

	feed := &Feed{
		Records: make([]normalize.RawRecord, 0, rows.Length()),
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		code := attrValue(row, "currency")

		name := attrValue(row, "currencyname")
		if strings.TrimSpace(name.String()) == "" {
			name = code
		}

		feed.Records = append(feed.Records, normalize.RawRecord{
			Code:     code,
			Name:     name,
			Buy:      attrValue(row, "buy"),
			Transfer: attrValue(row, "transfer"),
			Sell:     attrValue(row, "sell"),
		})
	})

	return feed, nil
}

func attrValue(sel *goquery.Selection, name string) normalize.Value {
	v, ok := sel.Attr(name)
	if !ok {
		return normalize.Absent()
	}

	return normalize.Text(v)
}

// parseFeedTime parses the board timestamp, which is local Hanoi time
func parseFeedTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(feedTimeLayout, strings.TrimSpace(s), hanoiLocation())
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse board time %q: %w", s, err)
	}

	return t.UTC(), nil
}

func newXMLDecoder(b []byte) *xml.Decoder {
	decoder := xml.NewDecoder(bytes.NewReader(b))
	decoder.CharsetReader = charset.NewReaderLabel

	return decoder
}

func wrapDecodeErr(err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %s", errDecodeToken, syntaxErr.Error())
	}

	return fmt.Errorf("unable to decode rate board: %w", err)
}

func hanoiLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err == nil {
		return loc
	}

	return time.FixedZone("ICT", 7*60*60)
}
