// Package flowmon reads the XML documents written by ns-3's
// FlowMonitorHelper::SerializeToXmlFile.
//
// A document looks like
//
//	<FlowMonitor>
//	  <FlowStats>
//	    <Flow flowId="1" txPackets="100" rxPackets="98" rxBytes="..." delaySum="+1.2e+09ns" .../>
//	    ...
//	  </FlowStats>
//	  <Ipv4FlowClassifier>...</Ipv4FlowClassifier>
//	</FlowMonitor>
//
// Only the first child of the root is read. Its flows are listed once per
// direction, so only the first half of them is kept.
package flowmon

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"FlowMonReport/internal/model"
)

// ErrMalformedDocument is returned when a document is not well-formed XML or
// lacks the expected structure or attributes.
var ErrMalformedDocument = errors.New("malformed flow monitor document")

// Group is the in-scope part of the first top-level group of a document.
type Group struct {
	// Name is the element name of the group, normally "FlowStats".
	Name string
	// Total is the number of flow elements in the group.
	Total int
	// Records holds the first half of the flows, i.e. indices i < Total/2.
	Records []model.FlowRecord
}

// Extract opens path and decodes it with Decode.
func Extract(path string) (*Group, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow monitor file '%s': %w", path, err)
	}
	defer file.Close()

	group, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return group, nil
}

// Decode reads a whole document from r and returns the in-scope flow
// records of its first top-level group. The remainder of the document is
// only checked for well-formedness.
func Decode(r io.Reader) (*Group, error) {
	dec := xml.NewDecoder(r)

	if _, err := nextStart(dec); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
		}
		return nil, err
	}

	groupStart, err := nextStart(dec)
	if errors.Is(err, errEndOfParent) {
		return nil, fmt.Errorf("%w: root element has no children", ErrMalformedDocument)
	}
	if err != nil {
		return nil, unexpectedEOF(err)
	}

	var flows []xml.StartElement
	for {
		el, err := nextStart(dec)
		if errors.Is(err, errEndOfParent) {
			break
		}
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		flows = append(flows, el)
		if err := dec.Skip(); err != nil {
			return nil, malformed(err)
		}
	}

	// i < n/2 over the reals keeps ceil(n/2) records.
	inScope := (len(flows) + 1) / 2
	group := &Group{
		Name:    groupStart.Name.Local,
		Total:   len(flows),
		Records: make([]model.FlowRecord, 0, inScope),
	}
	for i := 0; i < inScope; i++ {
		rec, err := decodeFlow(flows[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s %d: %v", ErrMalformedDocument, flows[i].Name.Local, i, err)
		}
		group.Records = append(group.Records, rec)
	}

	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
	}
	return group, nil
}

var errEndOfParent = errors.New("end of parent element")

// nextStart returns the next child start element of the current element,
// or errEndOfParent when the current element closes first.
func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, io.EOF
		}
		if err != nil {
			return xml.StartElement{}, malformed(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.EndElement:
			return xml.StartElement{}, errEndOfParent
		}
	}
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return malformed(io.ErrUnexpectedEOF)
	}
	return err
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
}

func decodeFlow(el xml.StartElement) (model.FlowRecord, error) {
	attrs := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		attrs[a.Name.Local] = a.Value
	}

	var rec model.FlowRecord
	var err error
	if v, ok := attrs["flowId"]; ok {
		if rec.FlowID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return rec, fmt.Errorf("flowId: %w", err)
		}
	}

	ints := []struct {
		name string
		dst  *int64
	}{
		{"txPackets", &rec.TxPackets},
		{"rxPackets", &rec.RxPackets},
		{"rxBytes", &rec.RxBytes},
	}
	for _, f := range ints {
		v, ok := attrs[f.name]
		if !ok {
			return rec, fmt.Errorf("missing attribute %s", f.name)
		}
		if *f.dst, err = strconv.ParseInt(v, 10, 64); err != nil {
			return rec, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	times := []struct {
		name string
		dst  *float64
	}{
		{"delaySum", &rec.DelaySum},
		{"timeFirstRxPacket", &rec.TimeFirstRxPacket},
		{"timeLastRxPacket", &rec.TimeLastRxPacket},
	}
	for _, f := range times {
		v, ok := attrs[f.name]
		if !ok {
			return rec, fmt.Errorf("missing attribute %s", f.name)
		}
		if *f.dst, err = ParseTime(v); err != nil {
			return rec, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return rec, nil
}
