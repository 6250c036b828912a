// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentRecordedEvent is published, best effort, after a payment is
// recorded and reconciled. It carries enough information for downstream
// consumers to log or notify without querying the primary database.
type PaymentRecordedEvent struct {
	PagoID         uint64  `json:"pago_id"`
	InvitadoID     uint64  `json:"invitado_id"`
	InvitadoNombre string  `json:"invitado_nombre"`
	Monto          float64 `json:"monto"`
	MetodoPago     string  `json:"metodo_pago"`
	FechaPago      string  `json:"fecha_pago"`
	EstadoPago     string  `json:"estado_pago"`
	SaldoPendiente float64 `json:"saldo_pendiente"`
	ReciboArchivo  string  `json:"recibo_archivo"`
	RegistradoPor  string  `json:"registrado_por"`
	RegistradoEn   string  `json:"registrado_en"`
}
