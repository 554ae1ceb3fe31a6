package influxdb

import (
	"context"
	"fmt"

	"filling_line/internal/models"
	"filling_line/internal/tags"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// PointWriter is the part of api.WriteAPIBlocking the publisher needs.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Publisher writes one point per frame. Identity tags become point tags;
// numeric and string tags become fields. Array and date tags are skipped.
type Publisher struct {
	writer      PointWriter
	measurement string
	pointTags   map[string]string
}

func NewPublisher(writer PointWriter, measurement string, id models.Identity) *Publisher {
	return &Publisher{
		writer:      writer,
		measurement: measurement,
		pointTags: map[string]string{
			"machine_name":    id.Name,
			"serial_number":   id.SerialNumber,
			"plant":           id.Plant,
			"production_line": id.ProductionLine,
		},
	}
}

// identityTags are carried as point tags, not fields.
var identityTags = map[tags.ID]bool{
	tags.MachineName:         true,
	tags.MachineSerialNumber: true,
	tags.Plant:               true,
	tags.ProductionSegment:   true,
	tags.ProductionLine:      true,
}

// Fields converts a frame into InfluxDB field values.
func Fields(f tags.Frame) map[string]any {
	fields := make(map[string]any, tags.Count)
	for id := tags.ID(0); id < tags.Count; id++ {
		if identityTags[id] {
			continue
		}
		v := f.Get(id)
		switch v.Kind() {
		case tags.KindDouble:
			fields[id.Name()] = v.Double()
		case tags.KindUInt32:
			fields[id.Name()] = int64(v.UInt32())
		case tags.KindString:
			fields[id.Name()] = v.String()
		}
	}
	return fields
}

func (p *Publisher) Publish(ctx context.Context, f tags.Frame) error {
	point := influxdb2.NewPoint(p.measurement, p.pointTags, Fields(f), f.At)
	if err := p.writer.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("write frame %d: %w", f.Version, err)
	}
	return nil
}
