package funnel

// Customer-facing copy, Mexican Spanish. Kept in one place so tone
// changes do not touch handler logic.
const (
	replyGreeting = "¡Hola! 👋 Soy el asistente de FestiBooth. Rentamos cabinas de fotos, cabina 360, letras gigantes, chisperos, carrito de shots y más para tu evento."

	replyEventTypePrompt = "Para recomendarte lo mejor, cuéntame: ¿qué tipo de evento tienes?"

	replyServicesPrompt = "¡Perfecto! Dime qué servicios te interesan y te cotizo al momento. Manejamos:\n• Cabina de fotos\n• Cabina 360\n• Letras gigantes\n• Chisperos\n• Carrito de shots (con o sin alcohol)\n• Scrapbook\n• Lluvia metálica\n\nPuedes escribirlos juntos, por ejemplo: \"cabina de fotos, 6 letras y 4 chisperos\"."

	replyNoServices = "No logré identificar servicios en tu mensaje 😅. Escríbelos separados por comas, por ejemplo: \"cabina 360, 4 chisperos y scrapbook\"."

	replyCabinTypePrompt = "¿Cuál cabina te interesa? 📸 Tenemos la cabina de fotos tradicional (impresiones ilimitadas) y la cabina 360 (video en cámara lenta)."

	replyLetterCountPrompt = "¿Cuántas letras gigantes necesitas? Cada letra cuesta $400. Por ejemplo, \"XV\" son 2 letras y un nombre como \"LAURA\" son 5."

	replySparklerCountPrompt = "¿Cuántos chisperos quieres? Manejamos paquetes de 2, 4, 6, 8 o 10."

	replySparklerInvalid = "Ese número no lo manejamos 😅. Los paquetes de chisperos son de 2, 4, 6, 8 o 10. ¿Cuál te late?"

	replyLetterInvalid = "Necesito un número de letras, por ejemplo \"6\". ¿Cuántas serían?"

	replyCartVariantPrompt = "¿El carrito de shots lo quieres con alcohol o sin alcohol? 🍸"

	replyCabinRetry = "No te entendí 😅. ¿Cabina de fotos o cabina 360?"

	replyCartRetry = "No te entendí 😅. ¿Con alcohol o sin alcohol?"

	replyConfirmRetry = "¿Me confirmas con un sí o un no? 🙏"

	replyModifyPrompt = "Claro, dime qué agregamos o quitamos. Por ejemplo: \"agrega scrapbook\" o \"quita las letras\"."

	replyDatePrompt = "¡Excelente elección! 🎉 ¿Para qué fecha es tu evento? Escríbela como DD/MM/AAAA o, por ejemplo, \"20 de mayo 2026\"."

	replyDateBadFormat = "No reconocí la fecha 😅. Escríbela como DD/MM/AAAA (por ejemplo 15/08/2026) o como \"20 de mayo 2026\"."

	replyDatePast = "Esa fecha ya pasó 😅. ¿Me compartes una fecha futura para tu evento?"

	replyDateTooFar = "Por ahora solo agendamos eventos hasta con 2 años de anticipación. ¿Tienes una fecha más cercana?"

	replyDateUnavailable = "Esa fecha ya la tenemos ocupada 😔. ¿Tienes alguna otra fecha disponible?"

	replyVenuePrompt = "¡Tenemos disponible esa fecha! 🙌 ¿En qué lugar será el evento? (salón, jardín o dirección)"

	replyDeposit = "¡Listo! 🎊 Para apartar tu fecha solo necesitamos un anticipo de $500 por transferencia:\n\nBanco: BBVA\nCuenta: 0123456789\nCLABE: 012345678901234567\nA nombre de: FestiBooth MX\n\nEn cuanto nos mandes tu comprobante, tu fecha queda reservada y un asesor te contacta para afinar detalles. ¡Gracias por elegirnos! 💜"

	replyApology = "Una disculpa, en este momento no pude procesar tu mensaje 🙏. Un asesor te contactará en breve para ayudarte."

	replyContactSupport = "Veo que ya tienes ambas versiones de ese servicio en tu cotización 🤔. Para ajustarlo mejor, un asesor te contactará en este chat."

	genaiSystemPrompt = "Eres el asistente de ventas de FestiBooth, una empresa de renta de cabinas de fotos y servicios para eventos en Monterrey, México. Responde en español mexicano, breve, amable y con emojis moderados. Servicios: cabina de fotos ($3,500), cabina 360 ($4,500), letras gigantes ($400 por letra), chisperos (paquetes de 2 a 10), carrito de shots con alcohol ($2,800) o sin alcohol ($2,200), scrapbook ($800) y lluvia metálica ($700). Hay descuentos por contratar varios servicios. Si no sabes algo, ofrece que un asesor humano contacte al cliente. Nunca inventes precios ni fechas."
)
