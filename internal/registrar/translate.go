package registrar

import (
	"encoding/json"
	"strings"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

// lockResponse mirrors the registrar's lock reply.  The overall flag may
// arrive as "exitoso" or "resultado", the text as "mensaje" or
// "descripcion"; per-seat outcomes come as free-text "estado" values.
type lockResponse struct {
	Exitoso     *bool          `json:"exitoso"`
	Resultado   *bool          `json:"resultado"`
	Mensaje     string         `json:"mensaje"`
	Descripcion string         `json:"descripcion"`
	Asientos    []lockSeatInfo `json:"asientos"`
}

type lockSeatInfo struct {
	Fila    int    `json:"fila"`
	Columna int    `json:"columna"`
	Estado  string `json:"estado"`
}

// saleResponse mirrors the registrar's confirm reply.  "resultado" may be
// a JSON boolean or a string ("EXITOSA", "FALLIDA"), so it is captured
// raw and interpreted during translation.
type saleResponse struct {
	SaleID    *int64          `json:"ventaIdCatedra"`
	Resultado json.RawMessage `json:"resultado"`
	Mensaje   string          `json:"mensaje"`
}

// translateLockResponse folds the registrar's lock vocabulary into the
// canonical LockResult.  Seats whose estado names a lock go to Locked;
// occupied/sold seats go to Unavailable; anything else is ignored.
func translateLockResponse(raw lockResponse) model.LockResult {
	out := model.LockResult{
		Locked:      []model.SeatRef{},
		Unavailable: []model.SeatRef{},
	}

	switch {
	case raw.Exitoso != nil:
		out.OK = *raw.Exitoso
	case raw.Resultado != nil:
		out.OK = *raw.Resultado
	}
	out.Message = raw.Mensaje
	if out.Message == "" {
		out.Message = raw.Descripcion
	}

	for _, seat := range raw.Asientos {
		ref := model.SeatRef{Row: seat.Fila, Column: seat.Columna}
		switch NormalizeSeatState(seat.Estado) {
		case model.SeatLocked:
			out.Locked = append(out.Locked, ref)
		case model.SeatOccupied:
			out.Unavailable = append(out.Unavailable, ref)
		}
	}
	return out
}

// translateSaleResponse folds the confirm reply into a SaleOutcome.  A
// missing or unrecognized resultado counts as a rejection: the call got
// through, so this is a registrar verdict, not a communication failure.
func translateSaleResponse(raw saleResponse) SaleOutcome {
	out := SaleOutcome{SaleID: raw.SaleID, Message: raw.Mensaje}

	var asBool bool
	if err := json.Unmarshal(raw.Resultado, &asBool); err == nil {
		out.Accepted = asBool
		return out
	}
	var asString string
	if err := json.Unmarshal(raw.Resultado, &asString); err == nil {
		s := strings.ToUpper(strings.TrimSpace(asString))
		out.Accepted = s == "EXITOSA" || s == "EXITOSO"
	}
	return out
}

// NormalizeSeatState maps the registrar's free-text seat states onto the
// canonical three-state model.  Matching is case-insensitive and covers
// the synonyms seen on the wire: "Vendido" means sold (occupied) and any
// variant containing "bloqueo" ("Bloqueado", "BLOQUEO EXITOSO") means
// locked.  Unrecognized values default to FREE; the registrar is the
// final arbiter at lock time, so optimism here cannot oversell a seat.
func NormalizeSeatState(raw string) model.SeatState {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "BLOQUE"):
		return model.SeatLocked
	case strings.HasPrefix(s, "OCUPADO") || strings.HasPrefix(s, "VENDIDO"):
		return model.SeatOccupied
	default:
		return model.SeatFree
	}
}
