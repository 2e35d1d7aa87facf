package entity

// BrokerData referencia al bróker embebida en la entrada.
type BrokerData struct {
	BrokerName Text `json:"brokername"`
	BrokerID   Text `json:"brokerid"`
}

// RMData referencia al relationship manager (RM) embebida en la entrada.
type RMData struct {
	Name Text `json:"name"`
	RMID Text `json:"rmid"`
}

// AssociateData referencia al asociado POS embebida en la entrada.
type AssociateData struct {
	Name        Text `json:"name"`
	AssociateID Text `json:"associateid"`
}

// BusinessEntry una póliza emitida / transacción de negocio tal como la devuelve
// el backend. Es de solo lectura para el núcleo de reportes.
type BusinessEntry struct {
	ID           Text `json:"id"`
	PolicyNumber Text `json:"policyNumber,omitempty"`
	CustomerName Text `json:"customerName,omitempty"`

	// Fechas candidatas para la fecha efectiva (en orden de prioridad).
	PolicyIssueDate Text `json:"policyIssueDate"`
	PolicyStartDate Text `json:"policyStartDate"`
	CreatedAt       Text `json:"createdAt"`

	// Montos (decimal-string, pueden traer comas).
	NetPremium       Amount `json:"netPremium"`
	GrossPremium     Amount `json:"grossPremium"`
	TotalPayin       Amount `json:"totalPayin"`
	TotalPayout      Amount `json:"totalPayout"`
	NetRevenue       Amount `json:"netRevenue"`
	NetPremiumPayin  Amount `json:"netPremiumPayin"`
	NetPremiumPayout Amount `json:"netPremiumPayout"`

	// Claves categóricas para agrupar.
	InsuranceCompany Text           `json:"insuranceCompany"`
	State            Text           `json:"state"`
	ProductType      Text           `json:"productType"`
	InsuranceType    Text           `json:"insuranceType"`
	BrokerData       *BrokerData    `json:"brokerData,omitempty"`
	RMData           *RMData        `json:"rmData,omitempty"`
	AssociateData    *AssociateData `json:"associateData,omitempty"`
}

// RMID id del RM o "" si la entrada no tiene RM asignado.
func (e *BusinessEntry) RMID() string {
	if e.RMData == nil {
		return ""
	}
	return e.RMData.RMID.String()
}

// AssociateID id del asociado o "" si no tiene.
func (e *BusinessEntry) AssociateID() string {
	if e.AssociateData == nil {
		return ""
	}
	return e.AssociateData.AssociateID.String()
}
