// Package faq matches incoming text against an ordered list of
// pattern/answer rules.
//
// The funnel consults the matcher only while the conversation is in an
// insensitive state, so a question about coverage or deposits never
// swallows a numeric answer the state machine is waiting for. Rules are
// tested in order and the first match wins.
package faq

import "regexp"

// Rule pairs a pattern with its canned answer. Patterns run against
// normalized (lower-case, accent-stripped) text.
type Rule struct {
	Pattern *regexp.Regexp
	Answer  string
}

// Rules is the ordered FAQ table. Order matters: more specific
// questions come before generic ones.
var Rules = []Rule{
	{
		// Question forms only: bare "reservar"/"apartar" are purchase
		// intent the funnel itself advances on, not a question.
		Pattern: regexp.MustCompile(`anticipo|como (puedo |se )?(reservar|apartar|separar)|separar (la )?fecha`),
		Answer:  "Para apartar tu fecha pedimos un anticipo de $500, que se descuenta del total. El resto se liquida el día del evento. 📅",
	},
	{
		Pattern: regexp.MustCompile(`cuantas horas|cuanto (tiempo )?dura|duracion`),
		Answer:  "Todos nuestros servicios incluyen 3 horas de servicio continuo. Puedes extender por hora adicional con costo extra. ⏱️",
	},
	{
		Pattern: regexp.MustCompile(`que incluye la cabina|incluye la cabina|props|accesorios`),
		Answer:  "La cabina incluye impresiones ilimitadas, props, galería digital y un anfitrión durante todo el evento. 📸",
	},
	{
		Pattern: regexp.MustCompile(`donde (estan|se ubican)|ubicacion|de donde son|cobertura|hasta donde llegan|zona`),
		Answer:  "Estamos en Monterrey y cubrimos toda el área metropolitana sin costo de traslado. Fuera de la zona aplica un cargo según la distancia. 🚐",
	},
	{
		Pattern: regexp.MustCompile(`formas? de pago|como (puedo )?pagar|aceptan tarjeta|transferencia`),
		Answer:  "Aceptamos transferencia, depósito y efectivo. El anticipo puede ser por transferencia y el resto como prefieras. 💳",
	},
	{
		Pattern: regexp.MustCompile(`horario|a que hora (abren|atienden)`),
		Answer:  "Atendemos por WhatsApp todos los días de 9:00 a 21:00, y los eventos pueden ser a cualquier hora. 🕘",
	},
	{
		Pattern: regexp.MustCompile(`(hablar|contactar) con (una? )?(persona|asesor|humano)|telefono`),
		Answer:  "¡Claro! Un asesor te contactará en breve por este mismo chat. 🙋",
	},
	{
		Pattern: regexp.MustCompile(`factura`),
		Answer:  "Sí facturamos. Compártenos tu constancia de situación fiscal al confirmar tu evento y la emitimos sin costo. 🧾",
	},
}

// Match tests normalized text against the rules in order and returns
// the first matching answer.
func Match(normalized string) (string, bool) {
	for _, rule := range Rules {
		if rule.Pattern.MatchString(normalized) {
			return rule.Answer, true
		}
	}
	return "", false
}
