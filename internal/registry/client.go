// Package registry is the client for the state land-registry API, which
// serves parcel records per municipality in large paginated batches.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/config"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/reconcile"
)

const (
	retryBaseWait = 2 * time.Second
	retryMaxWait  = 30 * time.Second
)

type Client struct {
	base        string
	token       string
	pageSize    int
	maxAttempts int
	httpClient  *http.Client
	limiter     *rate.Limiter
	log         *slog.Logger

	// retryWait is swapped out in tests to avoid real sleeps.
	retryWait func(attempt int) time.Duration
}

func NewClient(cfg config.GeoAPIConfig, log *slog.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10000
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Client{
		base:        cfg.BaseURL,
		token:       cfg.Token,
		pageSize:    cfg.PageSize,
		maxAttempts: cfg.MaxAttempts,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		log:         log,
		retryWait:   backoffWait,
	}
}

// backoffWait doubles from the base each attempt, capped at the maximum.
func backoffWait(attempt int) time.Duration {
	wait := retryBaseWait << attempt
	if wait > retryMaxWait {
		return retryMaxWait
	}
	return wait
}

// FetchMunicipality pulls every parcel record the registry holds for one
// municipality, walking pages until a short page signals the end.
func (c *Client) FetchMunicipality(ctx context.Context, municipio string) ([]reconcile.RawParcel, error) {
	var out []reconcile.RawParcel
	for page := 0; ; page++ {
		records, err := c.fetchPage(ctx, municipio, page)
		if err != nil {
			return nil, err
		}
		for _, m := range records {
			out = append(out, fromRegistry(m))
		}
		if len(records) < c.pageSize {
			return out, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, municipio string, page int) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/pessoa/municipio/%s?pagina=%d&tamanho=%d&ordenarPor=proprietario",
		c.base, url.PathEscape(municipio), page, c.pageSize)

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			c.log.Warn("registry request failed, retrying",
				"municipio", municipio, "page", page, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryWait(attempt - 1)):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		records, retryable, err := c.doRequest(ctx, u)
		if err == nil {
			return records, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("registry page %d for %s: %w", page, municipio, lastErr)
}

func (c *Client) doRequest(ctx context.Context, u string) (records []map[string]any, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("registry returned %s", resp.Status)
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("registry returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, true, fmt.Errorf("decode registry response: %w", err)
	}
	return records, false, nil
}

// fromRegistry maps one registry object onto the raw-record shape. The
// registry mixes numeric and string payloads per field, so everything goes
// through asText.
func fromRegistry(m map[string]any) reconcile.RawParcel {
	return reconcile.RawParcel{
		LoteID:            asText(m["lote_id"]),
		PessoaID:          asText(m["pessoa_id"]),
		Municipio:         asText(m["municipio"]),
		Proprietario:      asText(m["proprietario"]),
		Imovel:            asText(m["imovel"]),
		NomeDistrito:      asText(m["nome_distrito"]),
		CodigoDistrito:    asText(m["codigo_distrito"]),
		PontoDeReferencia: asText(m["ponto_de_referencia"]),
		DataCriacao:       asText(m["dhc"]),
		CodigoMunicipio:   asText(m["codigo_municipio"]),
		Geometria:         asText(m["multipolygon"]),
		Centroide:         asText(m["centroide"]),
		DataModificacao:   asText(m["dhm"]),
		SituacaoJuridica:  asText(m["situacao_juridica"]),
		NumeroIncra:       asText(m["sncr"]),
		NumeroTitulo:      asText(m["titulo"]),
		NumeroLote:        asText(m["numero"]),
		CPFCNPJ:           asText(m["cpfcnpj"]),
	}
}

func asText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
