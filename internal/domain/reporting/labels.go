package reporting

import (
	"fmt"
	"strings"

	"github.com/jhoicas/polizas-reportes/internal/domain"
	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

// Etiquetas de respaldo cuando la entrada no trae la clave de agrupación.
const (
	UnmappedLabel          = "Unmapped"
	UnmappedBrokerLabel    = "Unmapped Broker"
	UnknownInsurerLabel    = "Unknown Insurer"
	UnknownStateLabel      = "Unknown State"
	UnmappedRMLabel        = "Unmapped RM"
	UnmappedAssociateLabel = "Unmapped Associate"
	UnknownProductLabel    = "Unknown Product"
)

// LabelFunc devuelve la clave de agrupación de una entrada.
type LabelFunc func(e *entity.BusinessEntry) string

// Dimension clave categórica disponible para distribuciones.
type Dimension string

const (
	DimensionBroker    Dimension = "broker"
	DimensionInsurer   Dimension = "insurer"
	DimensionState     Dimension = "state"
	DimensionRM        Dimension = "rm"
	DimensionAssociate Dimension = "associate"
	DimensionProduct   Dimension = "product"
)

// AllDimensions orden en que se presentan las distribuciones del overview.
var AllDimensions = []Dimension{
	DimensionBroker, DimensionInsurer, DimensionState,
	DimensionRM, DimensionAssociate, DimensionProduct,
}

// ParseDimension acepta el nombre de la dimensión sin distinguir mayúsculas.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllDimensions {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: dimensión desconocida %q", domain.ErrInvalidInput, s)
}

// Directory nombres de RMs y asociados por id, para etiquetar entradas que solo
// traen el id. Un Directory vacío es válido.
type Directory struct {
	RMNames        map[string]string
	AssociateNames map[string]string
}

// NewDirectory construye el directorio a partir de los listados del backend.
func NewDirectory(rms []entity.RelationshipManager, associates []entity.Associate) Directory {
	dir := Directory{
		RMNames:        make(map[string]string, len(rms)),
		AssociateNames: make(map[string]string, len(associates)),
	}
	for _, rm := range rms {
		if rm.ID.Present() && rm.Name.Present() {
			dir.RMNames[rm.ID.String()] = rm.Name.String()
		}
	}
	for _, a := range associates {
		if a.ID.Present() && a.Name.Present() {
			dir.AssociateNames[a.ID.String()] = a.Name.String()
		}
	}
	return dir
}

// LabelFor devuelve el LabelFunc de la dimensión usando dir para RMs y asociados.
func (dir Directory) LabelFor(d Dimension) LabelFunc {
	switch d {
	case DimensionBroker:
		return BrokerLabel
	case DimensionInsurer:
		return InsurerLabel
	case DimensionState:
		return StateLabel
	case DimensionRM:
		return dir.RMLabel
	case DimensionAssociate:
		return dir.AssociateLabel
	case DimensionProduct:
		return ProductLabel
	}
	return func(*entity.BusinessEntry) string { return UnmappedLabel }
}

// BrokerLabel brokername, luego brokerid.
func BrokerLabel(e *entity.BusinessEntry) string {
	if e.BrokerData != nil {
		if s := firstText(e.BrokerData.BrokerName, e.BrokerData.BrokerID); s != "" {
			return s
		}
	}
	return UnmappedBrokerLabel
}

// InsurerLabel compañía aseguradora.
func InsurerLabel(e *entity.BusinessEntry) string {
	return firstTextOr(UnknownInsurerLabel, e.InsuranceCompany)
}

// StateLabel estado (región) de la póliza.
func StateLabel(e *entity.BusinessEntry) string {
	return firstTextOr(UnknownStateLabel, e.State)
}

// ProductLabel productType, luego insuranceType.
func ProductLabel(e *entity.BusinessEntry) string {
	return firstTextOr(UnknownProductLabel, e.ProductType, e.InsuranceType)
}

// RMLabel nombre embebido, luego nombre del directorio, luego rmid.
func (dir Directory) RMLabel(e *entity.BusinessEntry) string {
	if e.RMData == nil {
		return UnmappedRMLabel
	}
	if s := e.RMData.Name.String(); s != "" {
		return s
	}
	id := e.RMData.RMID.String()
	if name := dir.RMNames[id]; name != "" {
		return name
	}
	if id != "" {
		return id
	}
	return UnmappedRMLabel
}

// AssociateLabel nombre embebido, luego nombre del directorio, luego associateid.
func (dir Directory) AssociateLabel(e *entity.BusinessEntry) string {
	if e.AssociateData == nil {
		return UnmappedAssociateLabel
	}
	if s := e.AssociateData.Name.String(); s != "" {
		return s
	}
	id := e.AssociateData.AssociateID.String()
	if name := dir.AssociateNames[id]; name != "" {
		return name
	}
	if id != "" {
		return id
	}
	return UnmappedAssociateLabel
}

func firstText(values ...entity.Text) string {
	for _, v := range values {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

func firstTextOr(fallback string, values ...entity.Text) string {
	if s := firstText(values...); s != "" {
		return s
	}
	return fallback
}
