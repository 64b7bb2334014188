package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Formatos de fecha aceptados en el wire. Los marcadores de época ("U", "U.u")
// no son layouts de Go: se resuelven de forma especial al formatear y parsear.
const (
	LayoutDate         = "2006-01-02"
	LayoutRFC3339      = time.RFC3339
	LayoutRFC3339Milli = "2006-01-02T15:04:05.000Z07:00"
	LayoutEpoch        = "U"   // segundos Unix enteros
	LayoutEpochMicro   = "U.u" // segundos Unix con 6 decimales
)

// Casts numéricos opcionales aplicados tras formatear.
const (
	CastInt   = "int"
	CastFloat = "float"
)

// ErrInvalidInput valor que no puede interpretarse como fecha/hora.
var ErrInvalidInput = errors.New("valor de fecha inválido")

// Config contexto de normalización. El zero value de cada campo delega en la
// configuración por defecto del Normalizer.
type Config struct {
	Format   string
	Timezone *time.Location
	Cast     string // "", "int" o "float"
	// ForceTimezone reasigna la zona horaria del resultado reinterpretando los
	// campos de reloj (NO convierte el instante). Requiere Timezone.
	ForceTimezone bool
	// DisableTypeEnforcement devuelve la entrada cruda cuando ningún formato
	// parsea, en lugar de fallar. Escape para rutas de escritura tolerantes.
	DisableTypeEnforcement bool
}

// Normalizer convierte entre time.Time y sus representaciones externas
// (cadenas ISO, fechas sin hora, segundos de época como int o float).
type Normalizer struct {
	defaults Config
}

// NewNormalizer construye el normalizador. Si defaults.Format está vacío se usa RFC 3339.
func NewNormalizer(defaults Config) *Normalizer {
	if defaults.Format == "" {
		defaults.Format = LayoutRFC3339
	}
	return &Normalizer{defaults: defaults}
}

// Normalize formatea un time.Time según el contexto. Si hay zona configurada el
// valor se convierte a esa zona antes de formatear (time.Time es inmutable, no
// se toca el original). Con Cast "int"/"float" la cadena formateada se parsea
// al tipo numérico, conservando la semántica de truncado del formato.
func (n *Normalizer) Normalize(value any, ctx Config) (any, error) {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return nil, fmt.Errorf("%w: se esperaba una instancia de fecha/hora", ErrInvalidInput)
		}
		t = *v
	default:
		return nil, fmt.Errorf("%w: se esperaba una instancia de fecha/hora, llegó %T", ErrInvalidInput, value)
	}

	layout := ctx.Format
	if layout == "" {
		layout = n.defaults.Format
	}
	if tz := n.timezone(ctx); tz != nil {
		t = t.In(tz)
	}
	formatted := formatLayout(t, layout)

	cast := ctx.Cast
	if cast == "" {
		cast = n.defaults.Cast
	}
	switch cast {
	case CastInt:
		i, err := strconv.ParseInt(formatted, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q no es convertible a entero", ErrInvalidInput, formatted)
		}
		return i, nil
	case CastFloat:
		f, err := strconv.ParseFloat(formatted, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q no es convertible a float", ErrInvalidInput, formatted)
		}
		return f, nil
	default:
		return formatted, nil
	}
}

// Denormalize interpreta un valor crudo (string, int o float) como time.Time.
// Devuelve time.Time, o la entrada sin tocar si ningún formato parsea y
// DisableTypeEnforcement está activo.
func (n *Normalizer) Denormalize(value any, ctx Config) (any, error) {
	effectiveFormat := ctx.Format
	if effectiveFormat == "" {
		effectiveFormat = n.defaults.Format
	}

	// Entrada numérica: solo tiene sentido con formato de época; se pasa a la
	// representación string equivalente antes de parsear.
	switch v := value.(type) {
	case int:
		value = epochString(int64(v), float64(v), effectiveFormat, value)
	case int32:
		value = epochString(int64(v), float64(v), effectiveFormat, value)
	case int64:
		value = epochString(v, float64(v), effectiveFormat, value)
	case float32:
		value = epochString(int64(v), float64(v), effectiveFormat, value)
	case float64:
		value = epochString(int64(v), v, effectiveFormat, value)
	}

	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: se esperaba una cadena de fecha no vacía, llegó %T", ErrInvalidInput, value)
	}

	tz := n.timezone(ctx)

	for _, layout := range n.candidates(ctx) {
		t, err := parseLayout(s, layout, tz)
		if err != nil {
			continue
		}
		if layout == LayoutDate {
			// fecha sin hora -> medianoche, descartando cualquier hora que el
			// parser hubiera asumido
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		}
		return n.enforceTimezone(t, ctx), nil
	}

	// último recurso: layouts genéricos comunes
	if t, err := parseLenient(s, tz); err == nil {
		return n.enforceTimezone(t, ctx), nil
	}

	if ctx.DisableTypeEnforcement || n.defaults.DisableTypeEnforcement {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q no coincide con ningún formato de fecha aceptado", ErrInvalidInput, s)
}

// candidates arma la lista ordenada de formatos a intentar. El orden es parte
// del contrato: formato de la llamada, formato por defecto, fecha sin hora,
// ISO extendido con fracción, ISO plano. Duplicados colapsan a la primera
// aparición.
func (n *Normalizer) candidates(ctx Config) []string {
	raw := make([]string, 0, 5)
	if ctx.Format != "" {
		raw = append(raw, ctx.Format)
	}
	if n.defaults.Format != "" {
		raw = append(raw, n.defaults.Format)
	}
	raw = append(raw, LayoutDate, LayoutRFC3339Milli, LayoutRFC3339)

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, layout := range raw {
		if seen[layout] {
			continue
		}
		seen[layout] = true
		out = append(out, layout)
	}
	return out
}

// timezone zona efectiva: la de la llamada o la por defecto.
func (n *Normalizer) timezone(ctx Config) *time.Location {
	if ctx.Timezone != nil {
		return ctx.Timezone
	}
	return n.defaults.Timezone
}

// enforceTimezone reetiqueta la zona del resultado cuando ForceTimezone está
// activo: los campos de reloj se reinterpretan en la zona configurada, sin
// desplazar el instante. Distinto de una conversión con In().
func (n *Normalizer) enforceTimezone(t time.Time, ctx Config) time.Time {
	tz := n.timezone(ctx)
	force := ctx.ForceTimezone || n.defaults.ForceTimezone
	if tz == nil || !force {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), tz)
}

// epochString convierte un número a la cadena que el formato de época espera:
// entero truncado para "U", seis decimales fijos para "U.u". Con cualquier otro
// formato el número se deja tal cual (y fallará la comprobación de string).
func epochString(i int64, f float64, format string, original any) any {
	switch format {
	case LayoutEpoch:
		return strconv.FormatInt(i, 10)
	case LayoutEpochMicro:
		return strconv.FormatFloat(f, 'f', 6, 64)
	default:
		return original
	}
}

// formatLayout formatea según layout, resolviendo los marcadores de época.
func formatLayout(t time.Time, layout string) string {
	switch layout {
	case LayoutEpoch:
		return strconv.FormatInt(t.Unix(), 10)
	case LayoutEpochMicro:
		return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
	default:
		return t.Format(layout)
	}
}

// parseLayout parsea s con un layout concreto. Para layouts de época la cadena
// debe ser numérica. Para el resto, si hay zona configurada y la cadena no trae
// offset, se interpreta en esa zona (ParseInLocation).
func parseLayout(s, layout string, tz *time.Location) (time.Time, error) {
	switch layout {
	case LayoutEpoch:
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return epochTime(sec, 0, tz), nil
	case LayoutEpochMicro:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, err
		}
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return epochTime(sec, nsec, tz), nil
	default:
		if tz != nil {
			return time.ParseInLocation(layout, s, tz)
		}
		return time.Parse(layout, s)
	}
}

func epochTime(sec, nsec int64, tz *time.Location) time.Time {
	t := time.Unix(sec, nsec)
	if tz != nil {
		return t.In(tz)
	}
	return t.UTC()
}

// lenientLayouts formatos del intento de último recurso, en orden.
var lenientLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"02/01/2006",
}

func parseLenient(s string, tz *time.Location) (time.Time, error) {
	for _, layout := range lenientLayouts {
		var t time.Time
		var err error
		if tz != nil {
			t, err = time.ParseInLocation(layout, s, tz)
		} else {
			t, err = time.Parse(layout, s)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("sin formato genérico para %q", s)
}
