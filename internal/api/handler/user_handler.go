package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ecommerce/internal/api/dto"
	"github.com/RoyceAzure/lab/ecommerce/internal/api/response"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
)

type UserHandler struct {
	userService service.IUserService
}

func NewUserHandler(userService service.IUserService) *UserHandler {
	if userService == nil {
		panic("userService cannot be nil")
	}
	return &UserHandler{userService: userService}
}

// @Summary get profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dto.UserDTO} "success"
// @Failure 401 {object} response.Response "Not authorized"
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	user, err := h.userService.GetProfile(r.Context(), payload.UserID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewUserDTO(user), "")
}

// @Summary update profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body dto.ProfileRequest true "profile"
// @Success 200 {object} response.Response{data=dto.UserDTO} "success"
// @Failure 400 {object} response.Response "validation failed"
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.ProfileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), payload.UserID, service.ProfileInput{
		Username: req.Username,
		Contact:  req.Contact,
		Gender:   req.Gender,
	})
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewUserDTO(user), "Profile updated successfully")
}

// @Summary list addresses
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]dto.AddressDTO} "success"
// @Router /users/addresses [get]
func (h *UserHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	addresses, err := h.userService.ListAddresses(r.Context(), payload.UserID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewAddressDTOs(addresses), "")
}

func addressInput(req dto.AddressRequest) service.AddressInput {
	return service.AddressInput{
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	}
}

// @Summary add address
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param address body dto.AddressRequest true "address"
// @Success 201 {object} response.Response{data=dto.AddressDTO} "success"
// @Failure 400 {object} response.Response "validation failed"
// @Router /users/addresses [post]
func (h *UserHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.AddressRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	address, err := h.userService.CreateAddress(r.Context(), payload.UserID, addressInput(req))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.CreatedJSON(w, dto.NewAddressDTO(address), "Address added successfully")
}

// @Summary update address
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param addressId path string true "address id"
// @Param address body dto.AddressRequest true "address"
// @Success 200 {object} response.Response{data=dto.AddressDTO} "success"
// @Failure 404 {object} response.Response "Address not found"
// @Router /users/addresses/{addressId} [put]
func (h *UserHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	addressID, err := uuidParam(r, "addressId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.AddressRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	address, err := h.userService.UpdateAddress(r.Context(), payload.UserID, addressID, addressInput(req))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewAddressDTO(address), "Address updated successfully")
}

// @Summary delete address
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param addressId path string true "address id"
// @Success 200 {object} response.Response "success"
// @Failure 404 {object} response.Response "Address not found"
// @Router /users/addresses/{addressId} [delete]
func (h *UserHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	addressID, err := uuidParam(r, "addressId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	if err := h.userService.DeleteAddress(r.Context(), payload.UserID, addressID); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil, "Address deleted successfully")
}

// @Summary set default address
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param addressId path string true "address id"
// @Success 200 {object} response.Response{data=[]dto.AddressDTO} "success"
// @Failure 404 {object} response.Response "Address not found"
// @Router /users/addresses/{addressId}/set-default [put]
func (h *UserHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	payload, err := currentPayload(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	addressID, err := uuidParam(r, "addressId")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	addresses, err := h.userService.SetDefaultAddress(r.Context(), payload.UserID, addressID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, dto.NewAddressDTOs(addresses), "Default address updated")
}
