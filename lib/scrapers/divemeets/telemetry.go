package divemeets

import (
	"divescore-backend/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("divescore.lib.scrapers.divemeets")

// SetRestyInstrumentOutput dumps every request/response pair of this
// client to the given output, used by the CLI's debug flag.
func (c *Client) SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, tracer, out)
}
