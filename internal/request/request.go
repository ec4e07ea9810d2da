/*
Copyright 2024 Pizza Hunt Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package request

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// AcceptHeader is sent on every JSON call.
const AcceptHeader = "application/json, text/plain, */*"

// ToJsonReq serializes payload to JSON and wraps it in a buffer ready to be used
// as a request body.
func ToJsonReq(payload interface{}) (*bytes.Buffer, error) {
	c, e := json.Marshal(payload)
	if e != nil {
		return nil, e
	}

	return bytes.NewBuffer(c), nil
}

// Call sends req with JSON headers and decodes the response body into response.
// A nil client falls back to http.DefaultClient.
//
// The returned *http.Response is nil only when the request never produced a
// response, which lets callers tell a transport failure from a bad body. The body
// is always closed before Call returns.
func Call(client *http.Client, req *http.Request, response interface{}) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", AcceptHeader)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return resp, err
	}
	return resp, nil
}
