package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type NetworkController struct {
	BaseUrl string
}

var client = &http.Client{
	Timeout: 30 * time.Second,
}

func (network *NetworkController) Post(path string, headers *map[string]string, payload interface{}) (*[]byte, *int, error) {
	marshaled, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling payload for post request to %s%s", network.BaseUrl, path)
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s%s", network.BaseUrl, path), bytes.NewBuffer(marshaled))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating post request to %s%s", network.BaseUrl, path)
	}
	req.Header.Set("Content-Type", "application/json")
	if headers != nil {
		for key, value := range *headers {
			req.Header.Set(key, value)
		}
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("error completing post request to %s%s", network.BaseUrl, path)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &res.StatusCode, fmt.Errorf("error reading response of post request to %s%s", network.BaseUrl, path)
	}
	return &body, &res.StatusCode, nil
}

func (network *NetworkController) Get(path string, headers *map[string]string) (*[]byte, *int, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s%s", network.BaseUrl, path), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating get request to %s%s", network.BaseUrl, path)
	}
	if headers != nil {
		for key, value := range *headers {
			req.Header.Set(key, value)
		}
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("error completing get request to %s%s", network.BaseUrl, path)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &res.StatusCode, fmt.Errorf("error reading response of get request to %s%s", network.BaseUrl, path)
	}
	return &body, &res.StatusCode, nil
}
