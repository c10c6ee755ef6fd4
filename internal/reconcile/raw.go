package reconcile

// RawParcel is one parcel record as it arrives from the land registry,
// every field still in source text form. JSON tags follow the registry's
// column names; the taxpayer id is never serialized, so quarantine
// artifacts cannot leak it.
type RawParcel struct {
	LoteID            string `json:"lote_id"`
	PessoaID          string `json:"pessoa_id,omitempty"`
	Municipio         string `json:"municipio,omitempty"`
	Proprietario      string `json:"proprietario,omitempty"`
	Imovel            string `json:"imovel,omitempty"`
	NomeDistrito      string `json:"nomedistrito,omitempty"`
	CodigoDistrito    string `json:"codigodistrito,omitempty"`
	PontoDeReferencia string `json:"pontodereferencia,omitempty"`
	DataCriacao       string `json:"dhc,omitempty"`
	CodigoMunicipio   string `json:"codigomunicipio,omitempty"`
	Geometria         string `json:"geometria,omitempty"`
	Centroide         string `json:"centroide,omitempty"`
	DataModificacao   string `json:"dhm,omitempty"`
	SituacaoJuridica  string `json:"situacaojuridica,omitempty"`
	NumeroIncra       string `json:"sncr,omitempty"`
	NumeroTitulo      string `json:"numerotitulo,omitempty"`
	NumeroLote        string `json:"numero,omitempty"`
	CPFCNPJ           string `json:"-"`
}

// signature is the tuple of fields compared when deciding whether two rows
// with the same lote_id are true duplicates or conflicting records.
func (r RawParcel) signature() [6]string {
	return [6]string{r.LoteID, r.NumeroLote, r.NumeroIncra, r.NumeroTitulo, r.DataCriacao, r.DataModificacao}
}
