package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ContractTypeResponse: тип контракта из API.
type ContractTypeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

// TemplateVersionResponse: версия шаблона из API.
type TemplateVersionResponse struct {
	ContractTypeID string `json:"contract_type_id"`
	Version        int    `json:"version"`
	HTML           string `json:"html,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ContractResponse: краткая информация о контракте.
type ContractResponse struct {
	ID             string `json:"id"`
	Number         string `json:"number"`
	ContractTypeID string `json:"contract_type_id"`
	CustomerName   string `json:"customer_name"`
	PlanName       string `json:"plan_name"`
	CreatedAt      string `json:"created_at"`
}

// ContractDetailResponse: полный снимок контракта с распределением цены.
type ContractDetailResponse struct {
	Contract  json.RawMessage `json:"contract"`
	Proration *struct {
		Items []struct {
			Name                string  `json:"name"`
			ShortName           string  `json:"short_name"`
			ValueWithBenefit    float64 `json:"value_with_benefit"`
			ValueWithoutBenefit float64 `json:"value_without_benefit"`
		} `json:"items"`
		TotalWithoutBenefit float64 `json:"total_without_benefit"`
		TotalWithBenefit    float64 `json:"total_with_benefit"`
	} `json:"proration"`
}

// RenderJobResponse: задание рендеринга из API.
type RenderJobResponse struct {
	ID              string `json:"id"`
	ContractID      string `json:"contract_id"`
	ContractTypeID  string `json:"contract_type_id"`
	TemplateVersion int    `json:"template_version"`
	Status          string `json:"status"`
	Format          string `json:"format"`
	StartedAt       string `json:"started_at,omitempty"`
	FinishedAt      string `json:"finished_at,omitempty"`
	DurationMs      int64  `json:"duration_ms,omitempty"`
	Error           string `json:"error,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// RenderStats: счётчики слияния.
type RenderStats struct {
	Scalars    int `json:"scalars"`
	Lists      int `json:"lists"`
	Functions  int `json:"functions"`
	Unresolved int `json:"unresolved"`
}

// PreviewResponse: результат предпросмотра.
type PreviewResponse struct {
	HTML       string      `json:"html"`
	Stats      RenderStats `json:"stats"`
	Unresolved []string    `json:"unresolved,omitempty"`
}

// --- Request types ---

// CreateContractTypeRequest: создание типа контракта.
type CreateContractTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// PreviewRequest: синхронный рендер.
type PreviewRequest struct {
	HTML    string `json:"html,omitempty"`
	Version int    `json:"version,omitempty"`
	Format  string `json:"format,omitempty"`
}

// CreateRenderRequest: асинхронный рендер.
type CreateRenderRequest struct {
	Version int    `json:"version,omitempty"`
	Format  string `json:"format,omitempty"`
}

// ListRendersOpts: параметры фильтрации заданий.
type ListRendersOpts struct {
	ContractID string
	Status     string
	Limit      int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client: HTTP-клиент для Contracta API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// PDF печатается синхронно в предпросмотре.
			Timeout: 90 * time.Second,
		},
	}
}

// --- Contract types ---

// ListContractTypes возвращает все типы контрактов.
func (c *Client) ListContractTypes() ([]ContractTypeResponse, error) {
	var types []ContractTypeResponse
	err := c.list("/api/v1/contract-types", nil, &types)
	return types, err
}

// CreateContractType создаёт тип контракта.
func (c *Client) CreateContractType(req CreateContractTypeRequest) (*ContractTypeResponse, error) {
	var ct ContractTypeResponse
	err := c.post("/api/v1/contract-types", req, &ct)
	return &ct, err
}

// GetContractType возвращает тип контракта по ID.
func (c *Client) GetContractType(id string) (*ContractTypeResponse, error) {
	var ct ContractTypeResponse
	err := c.get("/api/v1/contract-types/"+url.PathEscape(id), &ct)
	return &ct, err
}

// DeleteContractType удаляет тип контракта.
func (c *Client) DeleteContractType(id string) error {
	return c.delete("/api/v1/contract-types/" + url.PathEscape(id))
}

// ListTemplateVersions возвращает версии шаблона.
func (c *Client) ListTemplateVersions(typeID string) ([]TemplateVersionResponse, error) {
	var versions []TemplateVersionResponse
	err := c.list("/api/v1/contract-types/"+url.PathEscape(typeID)+"/templates", nil, &versions)
	return versions, err
}

// UploadTemplate загружает новую версию шаблона.
func (c *Client) UploadTemplate(typeID, html string) (*TemplateVersionResponse, error) {
	body := map[string]string{"html": html}
	var tv TemplateVersionResponse
	err := c.post("/api/v1/contract-types/"+url.PathEscape(typeID)+"/templates", body, &tv)
	return &tv, err
}

// GetTemplateVersion возвращает версию шаблона ("latest" или номер).
func (c *Client) GetTemplateVersion(typeID, version string) (*TemplateVersionResponse, error) {
	var tv TemplateVersionResponse
	err := c.get("/api/v1/contract-types/"+url.PathEscape(typeID)+"/templates/"+url.PathEscape(version), &tv)
	return &tv, err
}

// --- Contracts ---

// ListContracts возвращает контракты. Непустой typeID фильтрует по типу.
func (c *Client) ListContracts(typeID string, limit int) ([]ContractResponse, error) {
	params := url.Values{}
	if typeID != "" {
		params.Set("contract_type_id", typeID)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var contracts []ContractResponse
	err := c.list("/api/v1/contracts", params, &contracts)
	return contracts, err
}

// CreateContract сохраняет снимок контракта, переданный как JSON.
func (c *Client) CreateContract(snapshot json.RawMessage) (*ContractResponse, error) {
	var contract ContractResponse
	err := c.post("/api/v1/contracts", snapshot, &contract)
	return &contract, err
}

// GetContract возвращает полный снимок контракта.
func (c *Client) GetContract(id string) (*ContractDetailResponse, error) {
	var detail ContractDetailResponse
	err := c.get("/api/v1/contracts/"+url.PathEscape(id), &detail)
	return &detail, err
}

// DeleteContract удаляет контракт.
func (c *Client) DeleteContract(id string) error {
	return c.delete("/api/v1/contracts/" + url.PathEscape(id))
}

// Preview выполняет синхронный рендер в HTML.
func (c *Client) Preview(contractID string, req PreviewRequest) (*PreviewResponse, error) {
	var preview PreviewResponse
	err := c.post("/api/v1/contracts/"+url.PathEscape(contractID)+"/preview", req, &preview)
	return &preview, err
}

// PreviewRaw выполняет синхронный рендер и возвращает документ как есть (для PDF).
func (c *Client) PreviewRaw(contractID string, req PreviewRequest) ([]byte, error) {
	return c.raw(http.MethodPost, "/api/v1/contracts/"+url.PathEscape(contractID)+"/preview", req)
}

// --- Renders ---

// StartRender ставит контракт в очередь на рендер.
func (c *Client) StartRender(contractID string, req CreateRenderRequest) (*RenderJobResponse, error) {
	var job RenderJobResponse
	err := c.post("/api/v1/contracts/"+url.PathEscape(contractID)+"/renders", req, &job)
	return &job, err
}

// GetRender возвращает задание по ID.
func (c *Client) GetRender(id string) (*RenderJobResponse, error) {
	var job RenderJobResponse
	err := c.get("/api/v1/renders/"+url.PathEscape(id), &job)
	return &job, err
}

// ListRenders возвращает задания с фильтрацией.
func (c *Client) ListRenders(opts ListRendersOpts) ([]RenderJobResponse, error) {
	params := url.Values{}
	if opts.ContractID != "" {
		params.Set("contract_id", opts.ContractID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var jobs []RenderJobResponse
	err := c.list("/api/v1/renders", params, &jobs)
	return jobs, err
}

// RenderOutput скачивает готовый документ.
func (c *Client) RenderOutput(id string) ([]byte, error) {
	return c.raw(http.MethodGet, "/api/v1/renders/"+url.PathEscape(id)+"/output", nil)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) raw(method, path string, body any) ([]byte, error) {
	resp, err := c.do(method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
